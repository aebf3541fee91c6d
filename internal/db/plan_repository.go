package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"healthpanel-backend-go/internal/models"
)

const plansCollection = "plans"

// firestorePlanRepository implements PlanRepository using Firestore.
type firestorePlanRepository struct {
	client *firestore.Client
}

// NewFirestorePlanRepository creates a new instance of firestorePlanRepository.
func NewFirestorePlanRepository(client *firestore.Client) PlanRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for PlanRepository.")
	}
	return &firestorePlanRepository{client: client}
}

// Create adds a new plan document with an auto-generated ID.
func (r *firestorePlanRepository) Create(ctx context.Context, plan *models.Plan) (string, error) {
	docRef := r.client.Collection(plansCollection).NewDoc()
	plan.ID = docRef.ID
	if _, err := docRef.Create(ctx, plan); err != nil {
		return "", fmt.Errorf("failed to create plan: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a plan document by its ID.
func (r *firestorePlanRepository) GetByID(ctx context.Context, planID string) (*models.Plan, error) {
	if planID == "" {
		return nil, errors.New("planID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(plansCollection).Doc(planID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("plan with ID '%s' not found: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan with ID '%s': %w", planID, err)
	}

	var plan models.Plan
	if err := docSnap.DataTo(&plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan data for ID '%s': %w", planID, err)
	}
	plan.ID = docSnap.Ref.ID

	return &plan, nil
}

// List retrieves all plan documents.
func (r *firestorePlanRepository) List(ctx context.Context) ([]*models.Plan, error) {
	iter := r.client.Collection(plansCollection).Documents(ctx)
	defer iter.Stop()

	var plans []*models.Plan
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate plans: %w", err)
		}
		var plan models.Plan
		if err := docSnap.DataTo(&plan); err != nil {
			return nil, fmt.Errorf("failed to decode plan data for ID '%s': %w", docSnap.Ref.ID, err)
		}
		plan.ID = docSnap.Ref.ID
		plans = append(plans, &plan)
	}
	return plans, nil
}

// Update overwrites an existing plan document wholesale. Last writer wins.
func (r *firestorePlanRepository) Update(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		return errors.New("plan ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(plansCollection).Doc(plan.ID).Set(ctx, plan)
	if err != nil {
		return fmt.Errorf("failed to update plan with ID '%s': %w", plan.ID, err)
	}
	return nil
}

// Delete removes a plan document by its ID.
func (r *firestorePlanRepository) Delete(ctx context.Context, planID string) error {
	if planID == "" {
		return errors.New("planID cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(plansCollection).Doc(planID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete plan with ID '%s': %w", planID, err)
	}
	return nil
}
