package core

import (
	"context"
	"errors"
	"fmt"

	"healthpanel-backend-go/internal/db"
	"healthpanel-backend-go/internal/models"
)

// ErrUserNotFound is returned when an account record does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidStatus is returned for a status outside the account enumeration.
var ErrInvalidStatus = errors.New("invalid status value")

var validStatuses = map[string]bool{
	models.StatusActive:    true,
	models.StatusInactive:  true,
	models.StatusPending:   true,
	models.StatusSuspended: true,
	models.StatusCancelled: true,
}

// userService implements the UserService interface.
type userService struct {
	userRepo db.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Create registers a new individual account. Status defaults to pending.
func (s *userService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	status := req.Status
	if status == "" {
		status = models.StatusPending
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
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByID retrieves an account by its ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}
	return user, nil
}

// List retrieves all individual accounts.
func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Update applies the fields present in the request onto the stored account
// and writes it back whole. Two racing updates interleave freely; the last
// committed write wins.
func (s *userService) Update(ctx context.Context, userID string, req models.UpdateUserRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
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

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user '%s': %w", userID, err)
	}
	return user, nil
}

// Delete removes an account by its ID.
func (s *userService) Delete(ctx context.Context, userID string) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user '%s': %w", userID, err)
	}
	return nil
}
