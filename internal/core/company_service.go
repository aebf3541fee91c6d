package core

import (
	"context"
	"errors"
	"fmt"

	"healthpanel-backend-go/internal/db"
	"healthpanel-backend-go/internal/models"
)

var (
	// ErrCompanyNotFound is returned when a company record does not exist.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrCompanyHasUsers blocks deletion of a company that still references users.
	ErrCompanyHasUsers = errors.New("company still has associated users")
	// ErrCapacityExceeded is returned when a company's seat limit is reached.
	ErrCapacityExceeded = errors.New("company user capacity exceeded")
	// ErrUsernameTaken is returned when a username already exists within the company.
	ErrUsernameTaken = errors.New("username already taken in this company")
	// ErrInvalidCredentials is returned on a failed company-admin login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCrossTenant is returned when a record belongs to a different company.
	ErrCrossTenant = errors.New("record does not belong to this company")
)

// companyService implements the CompanyService interface.
type companyService struct {
	companyRepo     db.CompanyRepository
	companyUserRepo db.CompanyUserRepository
	tokenSecret     string
}

// NewCompanyService creates a new CompanyService instance.
func NewCompanyService(companyRepo db.CompanyRepository, companyUserRepo db.CompanyUserRepository, tokenSecret string) CompanyService {
	return &companyService{
		companyRepo:     companyRepo,
		companyUserRepo: companyUserRepo,
		tokenSecret:     tokenSecret,
	}
}

// Create registers a new tenant. Capacity defaults to unlimited.
func (s *companyService) Create(ctx context.Context, req models.CreateCompanyRequest) (*models.Company, error) {
	capacity := models.UnlimitedUserCapacity
	if req.UserCapacity != nil {
		capacity = *req.UserCapacity
	}

	company := &models.Company{
		Name:          req.Name,
		Industry:      req.Industry,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Status:        models.StatusActive,
		UserCapacity:  capacity,
		AdminUsername: req.AdminUsername,
		// Stored in plaintext, matching the product's existing credential
		// store. See DESIGN.md before changing this.
		AdminPassword: req.AdminPassword,
	}
	if _, err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	return company, nil
}

// GetByID retrieves a company by its ID.
func (s *companyService) GetByID(ctx context.Context, companyID string) (*models.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrCompanyNotFound, companyID)
		}
		return nil, fmt.Errorf("failed to get company '%s': %w", companyID, err)
	}
	return company, nil
}

// List retrieves all companies.
func (s *companyService) List(ctx context.Context) ([]*models.Company, error) {
	companies, err := s.companyRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// Update applies the fields present in the request onto the stored company.
func (s *companyService) Update(ctx context.Context, companyID string, req models.UpdateCompanyRequest) (*models.Company, error) {
	company, err := s.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Industry != nil {
		company.Industry = *req.Industry
	}
	if req.ContactEmail != nil {
		company.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		company.ContactPhone = *req.ContactPhone
	}
	if req.Status != nil {
		if !validStatuses[*req.Status] {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidStatus, *req.Status)
		}
		company.Status = *req.Status
	}
	if req.UserCapacity != nil {
		company.UserCapacity = *req.UserCapacity
	}
	if req.ActiveSubscriptionID != nil {
		company.ActiveSubscriptionID = *req.ActiveSubscriptionID
	}
	if req.AdminPassword != nil {
		company.AdminPassword = *req.AdminPassword
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to update company '%s': %w", companyID, err)
	}
	return company, nil
}

// Delete removes a company, refusing while any user still references it.
// The existence check and the delete are two independent reads (best-effort
// consistency, no transaction).
func (s *companyService) Delete(ctx context.Context, companyID string) error {
	if _, err := s.GetByID(ctx, companyID); err != nil {
		return err
	}
	count, err := s.companyUserRepo.CountByCompanyID(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to count users for company '%s': %w", companyID, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d user(s) remain", ErrCompanyHasUsers, count)
	}
	if err := s.companyRepo.Delete(ctx, companyID); err != nil {
		return fmt.Errorf("failed to delete company '%s': %w", companyID, err)
	}
	return nil
}

// Login compares the stored plaintext credentials and issues a company token.
// Wrong username and wrong password are indistinguishable to the caller.
func (s *companyService) Login(ctx context.Context, companyID string, req models.CompanyLoginRequest) (string, *models.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load company '%s' for login: %w", companyID, err)
	}

	if company.AdminUsername != req.Username || company.AdminPassword != req.Password {
		return "", nil, ErrInvalidCredentials
	}

	token, err := IssueCompanyToken(company.ID, s.tokenSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue company token: %w", err)
	}
	return token, company, nil
}

// CreateUser adds a company-scoped user after checking the seat limit and
// username uniqueness. Neither check is transactional with the write.
func (s *companyService) CreateUser(ctx context.Context, companyID string, req models.CreateUserRequest) (*models.User, error) {
	company, err := s.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if req.Username == "" {
		return nil, errors.New("username is required for company users")
	}

	if company.UserCapacity != models.UnlimitedUserCapacity {
		count, err := s.companyUserRepo.CountByCompanyID(ctx, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to count users for company '%s': %w", companyID, err)
		}
		if count >= company.UserCapacity {
			return nil, fmt.Errorf("%w: capacity %d reached", ErrCapacityExceeded, company.UserCapacity)
		}
	}

	if _, err := s.companyUserRepo.GetByUsername(ctx, companyID, req.Username); err == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrUsernameTaken, req.Username)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username '%s': %w", req.Username, err)
	}

	status := req.Status
	if status == "" {
		status = models.StatusActive
	}
	if !validStatuses[status] {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidStatus, status)
	}

	user := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Status:    status,
		CompanyID: companyID,
		Username:  req.Username,
	}
	if _, err := s.companyUserRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create company user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a company user and re-verifies tenant ownership, since
// document IDs are not scoped to a tenant.
func (s *companyService) GetUser(ctx context.Context, companyID, userID string) (*models.User, error) {
	user, err := s.companyUserRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get company user '%s': %w", userID, err)
	}
	if user.CompanyID != companyID {
		return nil, fmt.Errorf("%w: user '%s'", ErrCrossTenant, userID)
	}
	return user, nil
}

// ListUsers retrieves all users scoped to the company.
func (s *companyService) ListUsers(ctx context.Context, companyID string) ([]*models.User, error) {
	users, err := s.companyUserRepo.ListByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for company '%s': %w", companyID, err)
	}
	return users, nil
}

// UpdateUser applies the request onto a company user after the ownership check.
func (s *companyService) UpdateUser(ctx context.Context, companyID, userID string, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Status != nil {
		if !validStatuses[*req.Status] {
			return nil, fmt.Errorf("%w: '%s'", ErrInvalidStatus, *req.Status)
		}
		user.Status = *req.Status
	}

	if err := s.companyUserRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update company user '%s': %w", userID, err)
	}
	return user, nil
}

// DeleteUser removes a company user after the ownership check.
func (s *companyService) DeleteUser(ctx context.Context, companyID, userID string) error {
	if _, err := s.GetUser(ctx, companyID, userID); err != nil {
		return err
	}
	if err := s.companyUserRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete company user '%s': %w", userID, err)
	}
	return nil
}
