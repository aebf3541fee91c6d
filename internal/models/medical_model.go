package models

import "time"

// MedicalRecord is a health sub-record attached to an account (vitals,
// conditions, medication entries and the like). Data is schemaless by design;
// the companion app owns the per-type shape.
type MedicalRecord struct {
	ID         string                 `json:"id" firestore:"-"` // Firestore document ID
	UserID     string                 `json:"userId" firestore:"userId"`
	CompanyID  string                 `json:"companyId,omitempty" firestore:"companyId"`
	Type       string                 `json:"type" firestore:"type"` // e.g. "vitals", "condition", "medication"
	Title      string                 `json:"title" firestore:"title"`
	Data       map[string]interface{} `json:"data,omitempty" firestore:"data"`
	RecordedAt time.Time              `json:"recordedAt" firestore:"recordedAt"`
	CreatedAt  time.Time              `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt  time.Time              `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
