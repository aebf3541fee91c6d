package models

import "time"

// Plan types distinguish consumer plans from company plans.
const (
	PlanTypeB2C = "b2c"
	PlanTypeB2B = "b2b"
)

// Plan is a subscription plan record shown in the admin dashboard and used to
// seed Stripe checkout sessions.
type Plan struct {
	ID            string    `json:"id" firestore:"-"` // Firestore document ID
	Name          string    `json:"name" firestore:"name"`
	Price         float64   `json:"price" firestore:"price"`
	BillingCycle  string    `json:"billingCycle" firestore:"billingCycle"` // e.g. "monthly", "yearly"
	Type          string    `json:"type" firestore:"type"`                 // b2c or b2b
	Features      []string  `json:"features" firestore:"features"`
	MaxUsers      int       `json:"maxUsers" firestore:"maxUsers"`
	StripePriceID string    `json:"stripePriceId,omitempty" firestore:"stripePriceId"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
