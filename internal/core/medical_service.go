package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthpanel-backend-go/internal/db"
	"healthpanel-backend-go/internal/models"
)

// ErrRecordNotFound is returned when a medical record does not exist or does
// not belong to the addressed user.
var ErrRecordNotFound = errors.New("medical record not found")

// medicalService implements the MedicalService interface.
type medicalService struct {
	recordRepo      db.MedicalRecordRepository
	userRepo        db.UserRepository
	companyUserRepo db.CompanyUserRepository
}

// NewMedicalService creates a new MedicalService instance.
func NewMedicalService(recordRepo db.MedicalRecordRepository, userRepo db.UserRepository, companyUserRepo db.CompanyUserRepository) MedicalService {
	return &medicalService{
		recordRepo:      recordRepo,
		userRepo:        userRepo,
		companyUserRepo: companyUserRepo,
	}
}

// Create attaches a medical record to an individual account.
func (s *medicalService) Create(ctx context.Context, userID string, req models.CreateMedicalRecordRequest) (*models.MedicalRecord, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user '%s': %w", userID, err)
	}
	return s.create(ctx, user.ID, "", req)
}

func (s *medicalService) create(ctx context.Context, userID, companyID string, req models.CreateMedicalRecordRequest) (*models.MedicalRecord, error) {
	recordedAt := time.Now().UTC()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	record := &models.MedicalRecord{
		UserID:     userID,
		CompanyID:  companyID,
		Type:       req.Type,
		Title:      req.Title,
		Data:       req.Data,
		RecordedAt: recordedAt,
	}
	if _, err := s.recordRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create medical record: %w", err)
	}
	return record, nil
}

// GetByID retrieves one medical record, verifying it belongs to the
// addressed user. A record owned by another user reads as not-found.
func (s *medicalService) GetByID(ctx context.Context, userID, recordID string) (*models.MedicalRecord, error) {
	record, err := s.recordRepo.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrRecordNotFound, recordID)
		}
		return nil, fmt.Errorf("failed to get medical record '%s': %w", recordID, err)
	}
	if record.UserID != userID {
		return nil, fmt.Errorf("%w: '%s'", ErrRecordNotFound, recordID)
	}
	return record, nil
}

// ListByUser retrieves all medical records for an account.
func (s *medicalService) ListByUser(ctx context.Context, userID string) ([]*models.MedicalRecord, error) {
	records, err := s.recordRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records for user '%s': %w", userID, err)
	}
	return records, nil
}

// Update applies the fields present in the request onto the stored record.
func (s *medicalService) Update(ctx context.Context, userID, recordID string, req models.UpdateMedicalRecordRequest) (*models.MedicalRecord, error) {
	record, err := s.GetByID(ctx, userID, recordID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		record.Type = *req.Type
	}
	if req.Title != nil {
		record.Title = *req.Title
	}
	if req.Data != nil {
		record.Data = *req.Data
	}
	if req.RecordedAt != nil {
		record.RecordedAt = *req.RecordedAt
	}

	if err := s.recordRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update medical record '%s': %w", recordID, err)
	}
	return record, nil
}

// Delete removes a medical record after the ownership check.
func (s *medicalService) Delete(ctx context.Context, userID, recordID string) error {
	if _, err := s.GetByID(ctx, userID, recordID); err != nil {
		return err
	}
	if err := s.recordRepo.Delete(ctx, recordID); err != nil {
		return fmt.Errorf("failed to delete medical record '%s': %w", recordID, err)
	}
	return nil
}

// CreateForCompanyUser attaches a medical record to a company-scoped user,
// re-verifying the user's tenant after the point lookup.
func (s *medicalService) CreateForCompanyUser(ctx context.Context, companyID, userID string, req models.CreateMedicalRecordRequest) (*models.MedicalRecord, error) {
	user, err := s.companyUserRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load company user '%s': %w", userID, err)
	}
	if user.CompanyID != companyID {
		return nil, fmt.Errorf("%w: user '%s'", ErrCrossTenant, userID)
	}
	return s.create(ctx, user.ID, companyID, req)
}

// ListForCompanyUser lists a company user's medical records after the
// tenant ownership check.
func (s *medicalService) ListForCompanyUser(ctx context.Context, companyID, userID string) ([]*models.MedicalRecord, error) {
	user, err := s.companyUserRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load company user '%s': %w", userID, err)
	}
	if user.CompanyID != companyID {
		return nil, fmt.Errorf("%w: user '%s'", ErrCrossTenant, userID)
	}
	return s.ListByUser(ctx, user.ID)
}
