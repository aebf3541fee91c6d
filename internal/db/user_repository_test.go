package db

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthpanel-backend-go/internal/models"
)

// newOfflineClient returns a Firestore client aimed at an unreachable
// emulator address. SDK client-side validation runs before any RPC, so these
// tests can assert a write passes validation: a rejected write fails with the
// validation message, an accepted one fails at the transport instead.
func newOfflineClient(t *testing.T) *firestore.Client {
	t.Helper()
	t.Setenv("FIRESTORE_EMULATOR_HOST", "localhost:1")

	client, err := firestore.NewClient(context.Background(), "test-project")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// Update sends the whole struct as a document overwrite. Set with MergeAll is
// rejected client-side for struct data, which previously made every Update
// fail before reaching the store.
func TestUpdateWritesPassClientSideValidation(t *testing.T) {
	client := newOfflineClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cases := []struct {
		name   string
		update func() error
	}{
		{"user", func() error {
			return NewFirestoreUserRepository(client).Update(ctx, &models.User{ID: "user-1", Email: "a@example.com", Status: models.StatusActive})
		}},
		{"company", func() error {
			return NewFirestoreCompanyRepository(client).Update(ctx, &models.Company{ID: "company-1", Name: "Acme Health", UserCapacity: models.UnlimitedUserCapacity})
		}},
		{"company user", func() error {
			return NewFirestoreCompanyUserRepository(client).Update(ctx, &models.User{ID: "cuser-1", CompanyID: "company-1", Username: "alice"})
		}},
		{"plan", func() error {
			return NewFirestorePlanRepository(client).Update(ctx, &models.Plan{ID: "plan-1", Name: "Premium", Type: models.PlanTypeB2C})
		}},
		{"medical record", func() error {
			return NewFirestoreMedicalRecordRepository(client).Update(ctx, &models.MedicalRecord{ID: "rec-1", UserID: "user-1", Type: "vitals", Title: "Blood pressure"})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.update()
			// The unreachable host makes the RPC itself fail; what must not
			// happen is the client refusing the write before dialing.
			if err != nil {
				assert.NotContains(t, err.Error(), "MergeAll")
			}
		})
	}
}

func TestUpdateSubscriptionPassesClientSideValidation(t *testing.T) {
	client := newOfflineClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := &models.Subscription{
		StripeCustomerID: "cus_1",
		Status:           models.SubStatusActive,
		UpdatedAt:        time.Now().UTC(),
	}
	err := NewFirestoreUserRepository(client).UpdateSubscription(ctx, "user-1", sub)
	if err != nil {
		// Client-side validation failures carry the "firestore:" prefix;
		// transport failures against the unreachable host do not.
		assert.NotContains(t, err.Error(), "firestore:")
	}
}
