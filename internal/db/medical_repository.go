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

const medicalRecordsCollection = "medicalRecords"

// firestoreMedicalRecordRepository implements MedicalRecordRepository using Firestore.
type firestoreMedicalRecordRepository struct {
	client *firestore.Client
}

// NewFirestoreMedicalRecordRepository creates a new instance of firestoreMedicalRecordRepository.
func NewFirestoreMedicalRecordRepository(client *firestore.Client) MedicalRecordRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for MedicalRecordRepository.")
	}
	return &firestoreMedicalRecordRepository{client: client}
}

// Create adds a new medical record document with an auto-generated ID.
func (r *firestoreMedicalRecordRepository) Create(ctx context.Context, record *models.MedicalRecord) (string, error) {
	if record.UserID == "" {
		return "", errors.New("userID cannot be empty for medical record Create operation")
	}
	docRef := r.client.Collection(medicalRecordsCollection).NewDoc()
	record.ID = docRef.ID
	if _, err := docRef.Create(ctx, record); err != nil {
		return "", fmt.Errorf("failed to create medical record: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a medical record document by its ID. Callers must verify
// UserID/CompanyID ownership themselves after the lookup.
func (r *firestoreMedicalRecordRepository) GetByID(ctx context.Context, recordID string) (*models.MedicalRecord, error) {
	if recordID == "" {
		return nil, errors.New("recordID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(medicalRecordsCollection).Doc(recordID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("medical record with ID '%s' not found: %w", recordID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get medical record with ID '%s': %w", recordID, err)
	}

	var record models.MedicalRecord
	if err := docSnap.DataTo(&record); err != nil {
		return nil, fmt.Errorf("failed to decode medical record data for ID '%s': %w", recordID, err)
	}
	record.ID = docSnap.Ref.ID

	return &record, nil
}

// ListByUserID retrieves all medical records attached to the given account,
// newest first.
func (r *firestoreMedicalRecordRepository) ListByUserID(ctx context.Context, userID string) ([]*models.MedicalRecord, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUserID operation")
	}
	iter := r.client.Collection(medicalRecordsCollection).
		Where("userId", "==", userID).
		OrderBy("recordedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var records []*models.MedicalRecord
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate medical records for user '%s': %w", userID, err)
		}
		var record models.MedicalRecord
		if err := docSnap.DataTo(&record); err != nil {
			return nil, fmt.Errorf("failed to decode medical record data for ID '%s': %w", docSnap.Ref.ID, err)
		}
		record.ID = docSnap.Ref.ID
		records = append(records, &record)
	}
	return records, nil
}

// Update overwrites an existing medical record document wholesale. Last
// writer wins.
func (r *firestoreMedicalRecordRepository) Update(ctx context.Context, record *models.MedicalRecord) error {
	if record.ID == "" {
		return errors.New("record ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(medicalRecordsCollection).Doc(record.ID).Set(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to update medical record with ID '%s': %w", record.ID, err)
	}
	return nil
}

// Delete removes a medical record document by its ID.
func (r *firestoreMedicalRecordRepository) Delete(ctx context.Context, recordID string) error {
	if recordID == "" {
		return errors.New("recordID cannot be empty for Delete operation")
	}
	if _, err := r.client.Collection(medicalRecordsCollection).Doc(recordID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete medical record with ID '%s': %w", recordID, err)
	}
	return nil
}
