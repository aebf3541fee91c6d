package models

import "time"

// Subscription statuses mirror the billing provider's enumeration, plus the
// sentinel written when a known billing customer has no subscription at all.
const (
	SubStatusActive         = "active"
	SubStatusTrialing       = "trialing"
	SubStatusPastDue        = "past_due"
	SubStatusCanceled       = "canceled"
	SubStatusIncomplete     = "incomplete"
	SubStatusUnpaid         = "unpaid"
	SubStatusPaused         = "paused"
	SubStatusNoSubscription = "no_subscription"
)

// Subscription is the embedded billing sub-record carried by an account
// document. At most one exists per account; it is written wholesale by the
// sync routine, never field-by-field and never by direct user input.
//
// Optional fields are pointers without omitempty so that an absent upstream
// value is persisted as an explicit null. Firestore rejects partial/undefined
// writes on Set, and downstream dashboards rely on the keys always existing.
type Subscription struct {
	StripeCustomerID     string     `json:"stripeCustomerId" firestore:"stripeCustomerId"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId" firestore:"stripeSubscriptionId"`
	PriceID              *string    `json:"priceId" firestore:"priceId"`
	ProductID            *string    `json:"productId" firestore:"productId"`
	PlanName             *string    `json:"planName" firestore:"planName"`
	Status               string     `json:"status" firestore:"status"`
	CurrentPeriodStart   *time.Time `json:"currentPeriodStart" firestore:"currentPeriodStart"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd" firestore:"currentPeriodEnd"`
	CancelAtPeriodEnd    bool       `json:"cancelAtPeriodEnd" firestore:"cancelAtPeriodEnd"`
	CanceledAt           *time.Time `json:"canceledAt" firestore:"canceledAt"`
	CreatedAt            *time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt" firestore:"updatedAt"`
}
