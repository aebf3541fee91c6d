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

const companyUsersCollection = "companyUsers"

// firestoreCompanyUserRepository implements CompanyUserRepository using Firestore.
type firestoreCompanyUserRepository struct {
	client *firestore.Client
}

// NewFirestoreCompanyUserRepository creates a new instance of firestoreCompanyUserRepository.
func NewFirestoreCompanyUserRepository(client *firestore.Client) CompanyUserRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for CompanyUserRepository.")
	}
	return &firestoreCompanyUserRepository{client: client}
}

// Create adds a new company-scoped user document with an auto-generated ID.
// Capacity and username-uniqueness checks live in the service layer; between
// check and write there is no transaction, so two racing creates can both
// land (accepted weakness).
func (r *firestoreCompanyUserRepository) Create(ctx context.Context, user *models.User) (string, error) {
	if user.CompanyID == "" {
		return "", errors.New("companyID cannot be empty for company user Create operation")
	}
	docRef := r.client.Collection(companyUsersCollection).NewDoc()
	user.ID = docRef.ID
	if _, err := docRef.Create(ctx, user); err != nil {
		return "", fmt.Errorf("failed to create company user: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a company user document by its ID. The document ID alone
// does not prove tenant ownership; callers must compare CompanyID themselves.
func (r *firestoreCompanyUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(companyUsersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("company user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company user with ID '%s': %w", userID, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode company user data for ID '%s': %w", userID, err)
	}
	user.ID = docSnap.Ref.ID

	return &user, nil
}

// ListByCompanyID retrieves all users scoped to the given company.
func (r *firestoreCompanyUserRepository) ListByCompanyID(ctx context.Context, companyID string) ([]*models.User, error) {
	if companyID == "" {
		return nil, errors.New("companyID cannot be empty for ListByCompanyID operation")
	}
	iter := r.client.Collection(companyUsersCollection).
		Where("companyId", "==", companyID).
		Documents(ctx)
	defer iter.Stop()

	var users []*models.User
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate company users for company '%s': %w", companyID, err)
		}
		var user models.User
		if err := docSnap.DataTo(&user); err != nil {
			return nil, fmt.Errorf("failed to decode company user data for ID '%s': %w", docSnap.Ref.ID, err)
		}
		user.ID = docSnap.Ref.ID
		users = append(users, &user)
	}
	return users, nil
}

// CountByCompanyID counts the users scoped to the given company (seat usage).
func (r *firestoreCompanyUserRepository) CountByCompanyID(ctx context.Context, companyID string) (int, error) {
	if companyID == "" {
		return 0, errors.New("companyID cannot be empty for CountByCompanyID operation")
	}
	iter := r.client.Collection(companyUsersCollection).
		Where("companyId", "==", companyID).
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count company users for company '%s': %w", companyID, err)
		}
		count++
	}
	return count, nil
}

// GetByUsername retrieves a company user by username within the company.
func (r *firestoreCompanyUserRepository) GetByUsername(ctx context.Context, companyID, username string) (*models.User, error) {
	if companyID == "" || username == "" {
		return nil, errors.New("companyID and username cannot be empty for GetByUsername operation")
	}
	iter := r.client.Collection(companyUsersCollection).
		Where("companyId", "==", companyID).
		Where("username", "==", username).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("company user '%s' not found in company '%s': %w", username, companyID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query company user by username '%s': %w", username, err)
	}

	var user models.User
	if err := docSnap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode company user data for ID '%s': %w", docSnap.Ref.ID, err)
	}
	user.ID = docSnap.Ref.ID
	return &user, nil
}

// Update overwrites an existing company user document wholesale. Last writer
// wins.
func (r *firestoreCompanyUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(companyUsersCollection).Doc(user.ID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to update company user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// Delete removes a company user document by its ID.
func (r *firestoreCompanyUserRepository) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("userID cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(companyUsersCollection).Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete company user with ID '%s': %w", userID, err)
	}
	return nil
}
