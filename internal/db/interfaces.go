package db

import (
	"context"

	"healthpanel-backend-go/internal/models"
)

// UserRepository defines storage operations for individual account records.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (string, error) // Returns new user ID
	GetByID(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
	// GetByStripeCustomerID looks an account up by its stored
	// billing-customer-id. Returns ErrNotFound when no account is linked.
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	// UpdateSubscription overwrites the account's subscription sub-record
	// wholesale. No field-level merge is performed.
	UpdateSubscription(ctx context.Context, userID string, sub *models.Subscription) error
}

// CompanyRepository defines storage operations for company (tenant) records.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) (string, error)
	GetByID(ctx context.Context, companyID string) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, companyID string) error
}

// CompanyUserRepository defines storage operations for company-scoped users.
// IDs are not inherently tenant-scoped: callers must re-verify CompanyID
// after any point lookup by ID.
type CompanyUserRepository interface {
	Create(ctx context.Context, user *models.User) (string, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	ListByCompanyID(ctx context.Context, companyID string) ([]*models.User, error)
	CountByCompanyID(ctx context.Context, companyID string) (int, error)
	GetByUsername(ctx context.Context, companyID, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
}

// PlanRepository defines storage operations for subscription plan records.
type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) (string, error)
	GetByID(ctx context.Context, planID string) (*models.Plan, error)
	List(ctx context.Context) ([]*models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, planID string) error
}

// MedicalRecordRepository defines storage operations for medical sub-records.
type MedicalRecordRepository interface {
	Create(ctx context.Context, record *models.MedicalRecord) (string, error)
	GetByID(ctx context.Context, recordID string) (*models.MedicalRecord, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.MedicalRecord, error)
	Update(ctx context.Context, record *models.MedicalRecord) error
	Delete(ctx context.Context, recordID string) error
}
