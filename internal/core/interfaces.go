package core

import (
	"context"

	"github.com/stripe/stripe-go/v81"

	"healthpanel-backend-go/internal/models"
)

// UserService defines operations on individual account records.
type UserService interface {
	Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, userID string, req models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

// CompanyService defines tenant operations: company CRUD, company-admin
// login, and management of company-scoped users.
type CompanyService interface {
	Create(ctx context.Context, req models.CreateCompanyRequest) (*models.Company, error)
	GetByID(ctx context.Context, companyID string) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
	Update(ctx context.Context, companyID string, req models.UpdateCompanyRequest) (*models.Company, error)
	// Delete refuses to remove a company that still references users.
	Delete(ctx context.Context, companyID string) error

	// Login compares the stored company-admin credentials and issues a
	// company-scoped token.
	Login(ctx context.Context, companyID string, req models.CompanyLoginRequest) (string, *models.Company, error)

	CreateUser(ctx context.Context, companyID string, req models.CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, companyID, userID string) (*models.User, error)
	ListUsers(ctx context.Context, companyID string) ([]*models.User, error)
	UpdateUser(ctx context.Context, companyID, userID string, req models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, companyID, userID string) error
}

// PlanService defines operations on subscription plan records.
type PlanService interface {
	Create(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error)
	GetByID(ctx context.Context, planID string) (*models.Plan, error)
	List(ctx context.Context) ([]*models.Plan, error)
	Update(ctx context.Context, planID string, req models.UpdatePlanRequest) (*models.Plan, error)
	Delete(ctx context.Context, planID string) error
}

// MedicalService defines operations on medical sub-records. The company
// variants re-verify tenant ownership of the parent user.
type MedicalService interface {
	Create(ctx context.Context, userID string, req models.CreateMedicalRecordRequest) (*models.MedicalRecord, error)
	GetByID(ctx context.Context, userID, recordID string) (*models.MedicalRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*models.MedicalRecord, error)
	Update(ctx context.Context, userID, recordID string, req models.UpdateMedicalRecordRequest) (*models.MedicalRecord, error)
	Delete(ctx context.Context, userID, recordID string) error

	CreateForCompanyUser(ctx context.Context, companyID, userID string, req models.CreateMedicalRecordRequest) (*models.MedicalRecord, error)
	ListForCompanyUser(ctx context.Context, companyID, userID string) ([]*models.MedicalRecord, error)
}

// BillingService drives user-facing Stripe flows (checkout and portal).
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error)
	CreatePortalSession(ctx context.Context, userID string) (string, error)
}

// SyncService is the reconciliation routine: it maps billing-subscription
// objects onto persisted subscription sub-records.
type SyncService interface {
	// SyncSubscription reconciles one billing subscription onto its account.
	// Returns the affected account ID.
	SyncSubscription(ctx context.Context, sub *stripe.Subscription) (string, error)
	// SyncCustomer polls the customer's subscriptions and reconciles; with no
	// subscription upstream it writes the no_subscription sentinel.
	SyncCustomer(ctx context.Context, customerID string) (string, error)
	// SyncUser reconciles one account by its stored billing-customer-id.
	SyncUser(ctx context.Context, userID string) error
	// MarkCanceled records a subscription deletion without a full pass.
	MarkCanceled(ctx context.Context, sub *stripe.Subscription) (string, error)
	// SyncAll bulk-reconciles every account carrying a billing-customer-id.
	SyncAll(ctx context.Context) (*SyncReport, error)
}

// StatsService aggregates subscription statistics for the admin dashboard.
type StatsService interface {
	SubscriptionStats(ctx context.Context) (*SubscriptionStats, error)
}
