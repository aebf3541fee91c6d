package models

import "time"

// CreateUserRequest is the payload for creating an individual account or a
// company-scoped user. Username is required only on the company path.
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
	Username  string `json:"username"`
}

// UpdateUserRequest carries the mutable account fields. Pointer fields
// distinguish "absent" from "set to zero value"; the subscription sub-record
// is deliberately not updatable here (sync routine owns it).
type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Status    *string `json:"status"`
}

// CreateCompanyRequest is the payload for registering a tenant.
type CreateCompanyRequest struct {
	Name          string `json:"name" binding:"required"`
	Industry      string `json:"industry"`
	ContactEmail  string `json:"contactEmail" binding:"required,email"`
	ContactPhone  string `json:"contactPhone"`
	UserCapacity  *int   `json:"userCapacity"`
	AdminUsername string `json:"adminUsername" binding:"required"`
	AdminPassword string `json:"adminPassword" binding:"required"`
}

// UpdateCompanyRequest carries the mutable company fields.
type UpdateCompanyRequest struct {
	Name                 *string `json:"name"`
	Industry             *string `json:"industry"`
	ContactEmail         *string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone         *string `json:"contactPhone"`
	Status               *string `json:"status"`
	UserCapacity         *int    `json:"userCapacity"`
	ActiveSubscriptionID *string `json:"activeSubscriptionId"`
	AdminPassword        *string `json:"adminPassword"`
}

// CompanyLoginRequest authenticates a company admin.
type CompanyLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreatePlanRequest is the payload for creating a subscription plan record.
type CreatePlanRequest struct {
	Name          string   `json:"name" binding:"required"`
	Price         float64  `json:"price" binding:"required"`
	BillingCycle  string   `json:"billingCycle" binding:"required"`
	Type          string   `json:"type" binding:"required,oneof=b2c b2b"`
	Features      []string `json:"features"`
	MaxUsers      int      `json:"maxUsers"`
	StripePriceID string   `json:"stripePriceId"`
}

// UpdatePlanRequest carries the mutable plan fields.
type UpdatePlanRequest struct {
	Name          *string   `json:"name"`
	Price         *float64  `json:"price"`
	BillingCycle  *string   `json:"billingCycle"`
	Type          *string   `json:"type" binding:"omitempty,oneof=b2c b2b"`
	Features      *[]string `json:"features"`
	MaxUsers      *int      `json:"maxUsers"`
	StripePriceID *string   `json:"stripePriceId"`
}

// CreateMedicalRecordRequest is the payload for attaching a medical
// sub-record to an account.
type CreateMedicalRecordRequest struct {
	Type       string                 `json:"type" binding:"required"`
	Title      string                 `json:"title" binding:"required"`
	Data       map[string]interface{} `json:"data"`
	RecordedAt *time.Time             `json:"recordedAt"`
}

// UpdateMedicalRecordRequest carries the mutable medical-record fields.
type UpdateMedicalRecordRequest struct {
	Type       *string                 `json:"type"`
	Title      *string                 `json:"title"`
	Data       *map[string]interface{} `json:"data"`
	RecordedAt *time.Time              `json:"recordedAt"`
}

// CreateCheckoutSessionRequest starts a Stripe checkout for an account.
type CreateCheckoutSessionRequest struct {
	UserID  string `json:"userId" binding:"required"`
	PriceID string `json:"priceId" binding:"required"`
}

// CreatePortalSessionRequest opens a Stripe billing-portal session for an
// account that already has a billing customer.
type CreatePortalSessionRequest struct {
	UserID string `json:"userId" binding:"required"`
}
