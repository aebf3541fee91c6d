package models

import "time"

// UnlimitedUserCapacity marks a company without a seat limit.
const UnlimitedUserCapacity = -1

// Company represents a B2B tenant. Its admin authenticates with the embedded
// credentials and may only manage users carrying the company's ID.
//
// AdminPassword is stored and compared in plaintext. This is a known weakness
// inherited from the product; hashing would invalidate existing credentials
// and needs a product decision first.
type Company struct {
	ID                   string    `json:"id" firestore:"-"` // Firestore document ID
	Name                 string    `json:"name" firestore:"name"`
	Industry             string    `json:"industry,omitempty" firestore:"industry"`
	ContactEmail         string    `json:"contactEmail" firestore:"contactEmail"`
	ContactPhone         string    `json:"contactPhone,omitempty" firestore:"contactPhone"`
	Status               string    `json:"status" firestore:"status"`
	UserCapacity         int       `json:"userCapacity" firestore:"userCapacity"` // -1 = unlimited
	ActiveSubscriptionID string    `json:"activeSubscriptionId,omitempty" firestore:"activeSubscriptionId"`
	AdminUsername        string    `json:"adminUsername" firestore:"adminUsername"`
	AdminPassword        string    `json:"-" firestore:"adminPassword"`
	CreatedAt            time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt            time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
