package core

import (
	"context"
	"errors"
	"fmt"

	"healthpanel-backend-go/internal/db"
	"healthpanel-backend-go/internal/models"
)

// ErrPlanNotFound is returned when a plan record does not exist.
var ErrPlanNotFound = errors.New("plan not found")

// planService implements the PlanService interface.
type planService struct {
	planRepo db.PlanRepository
}

// NewPlanService creates a new PlanService instance.
func NewPlanService(planRepo db.PlanRepository) PlanService {
	return &planService{planRepo: planRepo}
}

// Create adds a new subscription plan record.
func (s *planService) Create(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error) {
	plan := &models.Plan{
		Name:          req.Name,
		Price:         req.Price,
		BillingCycle:  req.BillingCycle,
		Type:          req.Type,
		Features:      req.Features,
		MaxUsers:      req.MaxUsers,
		StripePriceID: req.StripePriceID,
	}
	if _, err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return plan, nil
}

// GetByID retrieves a plan by its ID.
func (s *planService) GetByID(ctx context.Context, planID string) (*models.Plan, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrPlanNotFound, planID)
		}
		return nil, fmt.Errorf("failed to get plan '%s': %w", planID, err)
	}
	return plan, nil
}

// List retrieves all plans.
func (s *planService) List(ctx context.Context) ([]*models.Plan, error) {
	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// Update applies the fields present in the request onto the stored plan.
func (s *planService) Update(ctx context.Context, planID string, req models.UpdatePlanRequest) (*models.Plan, error) {
	plan, err := s.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.BillingCycle != nil {
		plan.BillingCycle = *req.BillingCycle
	}
	if req.Type != nil {
		plan.Type = *req.Type
	}
	if req.Features != nil {
		plan.Features = *req.Features
	}
	if req.MaxUsers != nil {
		plan.MaxUsers = *req.MaxUsers
	}
	if req.StripePriceID != nil {
		plan.StripePriceID = *req.StripePriceID
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan '%s': %w", planID, err)
	}
	return plan, nil
}

// Delete removes a plan by its ID.
func (s *planService) Delete(ctx context.Context, planID string) error {
	if _, err := s.GetByID(ctx, planID); err != nil {
		return err
	}
	if err := s.planRepo.Delete(ctx, planID); err != nil {
		return fmt.Errorf("failed to delete plan '%s': %w", planID, err)
	}
	return nil
}
