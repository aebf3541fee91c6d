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

const companiesCollection = "companies"

// firestoreCompanyRepository implements CompanyRepository using Firestore.
type firestoreCompanyRepository struct {
	client *firestore.Client
}

// NewFirestoreCompanyRepository creates a new instance of firestoreCompanyRepository.
func NewFirestoreCompanyRepository(client *firestore.Client) CompanyRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for CompanyRepository.")
	}
	return &firestoreCompanyRepository{client: client}
}

// Create adds a new company document with an auto-generated ID.
func (r *firestoreCompanyRepository) Create(ctx context.Context, company *models.Company) (string, error) {
	docRef := r.client.Collection(companiesCollection).NewDoc()
	company.ID = docRef.ID
	if _, err := docRef.Create(ctx, company); err != nil {
		return "", fmt.Errorf("failed to create company: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a company document by its ID.
func (r *firestoreCompanyRepository) GetByID(ctx context.Context, companyID string) (*models.Company, error) {
	if companyID == "" {
		return nil, errors.New("companyID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(companiesCollection).Doc(companyID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("company with ID '%s' not found: %w", companyID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company with ID '%s': %w", companyID, err)
	}

	var company models.Company
	if err := docSnap.DataTo(&company); err != nil {
		return nil, fmt.Errorf("failed to decode company data for ID '%s': %w", companyID, err)
	}
	company.ID = docSnap.Ref.ID

	return &company, nil
}

// List retrieves all company documents.
func (r *firestoreCompanyRepository) List(ctx context.Context) ([]*models.Company, error) {
	iter := r.client.Collection(companiesCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var companies []*models.Company
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate companies: %w", err)
		}
		var company models.Company
		if err := docSnap.DataTo(&company); err != nil {
			return nil, fmt.Errorf("failed to decode company data for ID '%s': %w", docSnap.Ref.ID, err)
		}
		company.ID = docSnap.Ref.ID
		companies = append(companies, &company)
	}
	return companies, nil
}

// Update overwrites an existing company document wholesale. Last writer wins.
func (r *firestoreCompanyRepository) Update(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		return errors.New("company ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(companiesCollection).Doc(company.ID).Set(ctx, company)
	if err != nil {
		return fmt.Errorf("failed to update company with ID '%s': %w", company.ID, err)
	}
	return nil
}

// Delete removes a company document by its ID. Referential guards (no delete
// while scoped users exist) live in the service layer.
func (r *firestoreCompanyRepository) Delete(ctx context.Context, companyID string) error {
	if companyID == "" {
		return errors.New("companyID cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(companiesCollection).Doc(companyID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete company with ID '%s': %w", companyID, err)
	}
	return nil
}
