package models

import "time"

// Account lifecycle statuses.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusPending   = "pending"
	StatusSuspended = "suspended"
	StatusCancelled = "cancelled"
)

// User represents an account record: an individual end-user, or a
// company-scoped user when CompanyID is set. Both shapes live in separate
// collections but share this struct, matching the product's document layout.
type User struct {
	ID           string        `json:"id" firestore:"-"` // Firestore document ID
	Email        string        `json:"email" firestore:"email"`
	FirstName    string        `json:"firstName" firestore:"firstName"`
	LastName     string        `json:"lastName" firestore:"lastName"`
	Phone        string        `json:"phone,omitempty" firestore:"phone"`
	Status       string        `json:"status" firestore:"status"`
	CompanyID    string        `json:"companyId,omitempty" firestore:"companyId"`
	Username     string        `json:"username,omitempty" firestore:"username"` // unique within a company
	Subscription *Subscription `json:"subscription,omitempty" firestore:"subscription"`
	CreatedAt    time.Time     `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt    time.Time     `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// StripeCustomerID returns the account's billing-customer-id, or "" when the
// account has never been linked to the billing provider.
func (u *User) StripeCustomerID() string {
	if u.Subscription == nil {
		return ""
	}
	return u.Subscription.StripeCustomerID
}
