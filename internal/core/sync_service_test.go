package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/billing"
	"healthpanel-backend-go/internal/db"
	"healthpanel-backend-go/internal/models"
)

// fakeUserRepo is an in-memory db.UserRepository for service tests.
type fakeUserRepo struct {
	users map[string]*models.User
	order []string
	// subWrites counts UpdateSubscription calls per user.
	subWrites map[string]int
	nextID    int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{
		users:     make(map[string]*models.User),
		subWrites: make(map[string]int),
	}
	for _, u := range users {
		r.users[u.ID] = u
		r.order = append(r.order, u.ID)
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (string, error) {
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[user.ID] = user
	r.order = append(r.order, user.ID)
	return user.ID, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*models.User, error) {
	// Insertion order keeps bulk-sync assertions stable.
	out := make([]*models.User, 0, len(r.users))
	for _, id := range r.order {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return db.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID string) error {
	if _, ok := r.users[userID]; !ok {
		return db.ErrNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) GetByStripeCustomerID(_ context.Context, customerID string) (*models.User, error) {
	for _, u := range r.users {
		if u.Subscription != nil && u.Subscription.StripeCustomerID == customerID {
			return u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeUserRepo) UpdateSubscription(_ context.Context, userID string, sub *models.Subscription) error {
	user, ok := r.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	user.Subscription = sub
	r.subWrites[userID]++
	return nil
}

// fakeBillingClient is a canned billing.Client for service tests.
type fakeBillingClient struct {
	subsByCustomer map[string][]*stripe.Subscription
	productNames   map[string]string
	listErr        map[string]error
	productErr     error
}

func newFakeBillingClient() *fakeBillingClient {
	return &fakeBillingClient{
		subsByCustomer: make(map[string][]*stripe.Subscription),
		productNames:   make(map[string]string),
		listErr:        make(map[string]error),
	}
}

func (c *fakeBillingClient) CreateCustomer(context.Context, string, string, map[string]string) (string, error) {
	return "cus_new", nil
}

func (c *fakeBillingClient) CreateCheckoutSession(context.Context, billing.CheckoutSessionParams) (string, error) {
	return "https://checkout.example/session", nil
}

func (c *fakeBillingClient) CreatePortalSession(context.Context, string, string) (string, error) {
	return "https://portal.example/session", nil
}

func (c *fakeBillingClient) ListSubscriptions(_ context.Context, customerID, _ string) ([]*stripe.Subscription, error) {
	if err := c.listErr[customerID]; err != nil {
		return nil, err
	}
	return c.subsByCustomer[customerID], nil
}

func (c *fakeBillingClient) GetSubscription(_ context.Context, subscriptionID string) (*stripe.Subscription, error) {
	for _, subs := range c.subsByCustomer {
		for _, sub := range subs {
			if sub.ID == subscriptionID {
				return sub, nil
			}
		}
	}
	return nil, errors.New("subscription not found")
}

func (c *fakeBillingClient) GetProductName(_ context.Context, productID string) (string, error) {
	if c.productErr != nil {
		return "", c.productErr
	}
	return c.productNames[productID], nil
}

func (c *fakeBillingClient) ConstructWebhookEvent([]byte, string, string) (stripe.Event, error) {
	return stripe.Event{}, errors.New("not implemented in fake")
}

func linkedUser(id, customerID string) *models.User {
	return &models.User{
		ID:     id,
		Email:  id + "@example.com",
		Status: models.StatusActive,
		Subscription: &models.Subscription{
			StripeCustomerID: customerID,
			Status:           models.SubStatusActive,
		},
	}
}

func fullStripeSub(id, customerID string) *stripe.Subscription {
	return &stripe.Subscription{
		ID:       id,
		Customer: &stripe.Customer{ID: customerID},
		Status:   stripe.SubscriptionStatusActive,
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				Price: &stripe.Price{
					ID:      "price_123",
					Product: &stripe.Product{ID: "prod_123", Name: "Premium Plan"},
				},
			}},
		},
		CurrentPeriodStart: 1700000000,
		CurrentPeriodEnd:   1702592000,
		Created:            1690000000,
	}
}

func newTestSyncService(repo db.UserRepository, client billing.Client) SyncService {
	return NewSyncService(repo, client, 0, zap.NewNop())
}

func TestSyncSubscriptionMetadataLinkWins(t *testing.T) {
	// The customer id on the subscription belongs to userB, but the metadata
	// link set at checkout points at userA. Metadata wins.
	userA := linkedUser("user-a", "cus_a")
	userB := linkedUser("user-b", "cus_b")
	repo := newFakeUserRepo(userA, userB)
	svc := newTestSyncService(repo, newFakeBillingClient())

	sub := fullStripeSub("sub_1", "cus_b")
	sub.Metadata = map[string]string{MetadataUserIDKey: "user-a"}

	userID, err := svc.SyncSubscription(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "user-a", userID)
	assert.Equal(t, 1, repo.subWrites["user-a"])
	assert.Zero(t, repo.subWrites["user-b"])
	// The persisted customer id comes from the subscription itself.
	assert.Equal(t, "cus_b", userA.Subscription.StripeCustomerID)
}

func TestSyncSubscriptionStaleMetadataFallsBack(t *testing.T) {
	userB := linkedUser("user-b", "cus_b")
	repo := newFakeUserRepo(userB)
	svc := newTestSyncService(repo, newFakeBillingClient())

	sub := fullStripeSub("sub_1", "cus_b")
	sub.Metadata = map[string]string{MetadataUserIDKey: "user-deleted"}

	userID, err := svc.SyncSubscription(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "user-b", userID)
}

func TestSyncSubscriptionNoLinkedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestSyncService(repo, newFakeBillingClient())

	_, err := svc.SyncSubscription(context.Background(), fullStripeSub("sub_1", "cus_unknown"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoLinkedAccount)
}

func TestSyncSubscriptionWritesExplicitNulls(t *testing.T) {
	user := linkedUser("user-a", "cus_a")
	repo := newFakeUserRepo(user)
	svc := newTestSyncService(repo, newFakeBillingClient())

	// Minimal upstream object: no items, no period timestamps, not canceled.
	sub := &stripe.Subscription{
		ID:       "sub_min",
		Customer: &stripe.Customer{ID: "cus_a"},
		Status:   stripe.SubscriptionStatusIncomplete,
	}

	_, err := svc.SyncSubscription(context.Background(), sub)
	require.NoError(t, err)

	rec := user.Subscription
	require.NotNil(t, rec)
	assert.Equal(t, models.SubStatusIncomplete, rec.Status)
	require.NotNil(t, rec.StripeSubscriptionID)
	assert.Equal(t, "sub_min", *rec.StripeSubscriptionID)
	// Absent optionals are present as explicit nulls, never dropped.
	assert.Nil(t, rec.PriceID)
	assert.Nil(t, rec.ProductID)
	assert.Nil(t, rec.PlanName)
	assert.Nil(t, rec.CurrentPeriodStart)
	assert.Nil(t, rec.CurrentPeriodEnd)
	assert.Nil(t, rec.CanceledAt)
	assert.Nil(t, rec.CreatedAt)
	assert.False(t, rec.CancelAtPeriodEnd)
}

func TestSyncSubscriptionIdempotent(t *testing.T) {
	user := linkedUser("user-a", "cus_a")
	repo := newFakeUserRepo(user)
	svc := newTestSyncService(repo, newFakeBillingClient())

	sub := fullStripeSub("sub_1", "cus_a")

	_, err := svc.SyncSubscription(context.Background(), sub)
	require.NoError(t, err)
	first := *user.Subscription

	_, err = svc.SyncSubscription(context.Background(), sub)
	require.NoError(t, err)
	second := *user.Subscription

	// Reapplying the same upstream state yields an identical record apart
	// from the write timestamp.
	first.UpdatedAt = second.UpdatedAt
	assert.Equal(t, first, second)
	assert.Equal(t, 2, repo.subWrites["user-a"])
}

func TestSyncCustomerReconcilesByCustomerID(t *testing.T) {
	user := linkedUser("user-a", "cus_a")
	repo := newFakeUserRepo(user)
	client := newFakeBillingClient()
	client.subsByCustomer["cus_a"] = []*stripe.Subscription{fullStripeSub("sub_1", "cus_a")}
	svc := newTestSyncService(repo, client)

	userID, err := svc.SyncCustomer(context.Background(), "cus_a")
	require.NoError(t, err)
	assert.Equal(t, "user-a", userID)
	require.NotNil(t, user.Subscription.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *user.Subscription.StripeSubscriptionID)
}

func TestSyncCustomerUnknownCustomer(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestSyncService(repo, newFakeBillingClient())

	_, err := svc.SyncCustomer(context.Background(), "cus_unknown")
	assert.ErrorIs(t, err, ErrNoLinkedAccount)
}

func TestSyncUserNoSubscriptionSentinel(t *testing.T) {
	user := linkedUser("user-a", "cus_a")
	repo := newFakeUserRepo(user)
	client := newFakeBillingClient() // cus_a has zero subscriptions upstream
	svc := newTestSyncService(repo, client)

	err := svc.SyncUser(context.Background(), "user-a")
	require.NoError(t, err)

	rec := user.Subscription
	require.NotNil(t, rec)
	assert.Equal(t, models.SubStatusNoSubscription, rec.Status)
	assert.Equal(t, "cus_a", rec.StripeCustomerID)
	// The wholesale overwrite clears any previous subscription identifiers.
	assert.Nil(t, rec.StripeSubscriptionID)
	assert.Nil(t, rec.PriceID)
	assert.Nil(t, rec.PlanName)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestSyncUserWithoutBillingCustomer(t *testing.T) {
	user := &models.User{ID: "user-a", Email: "a@example.com", Status: models.StatusActive}
	repo := newFakeUserRepo(user)
	svc := newTestSyncService(repo, newFakeBillingClient())

	err := svc.SyncUser(context.Background(), "user-a")
	assert.ErrorIs(t, err, ErrNoBillingCustomer)
}

func TestSyncUserPrefersLiveSubscription(t *testing.T) {
	user := linkedUser("user-a", "cus_a")
	repo := newFakeUserRepo(user)
	client := newFakeBillingClient()

	canceled := fullStripeSub("sub_old", "cus_a")
	canceled.Status = stripe.SubscriptionStatusCanceled
	active := fullStripeSub("sub_live", "cus_a")
	client.subsByCustomer["cus_a"] = []*stripe.Subscription{canceled, active}

	svc := newTestSyncService(repo, client)
	require.NoError(t, svc.SyncUser(context.Background(), "user-a"))

	require.NotNil(t, user.Subscription.StripeSubscriptionID)
	assert.Equal(t, "sub_live", *user.Subscription.StripeSubscriptionID)
	assert.Equal(t, models.SubStatusActive, user.Subscription.Status)
}

func TestSyncSubscriptionPlaceholderPlanName(t *testing.T) {
	user := linkedUser("user-a", "cus_a")
	repo := newFakeUserRepo(user)
	client := newFakeBillingClient()
	client.productErr = errors.New("upstream unavailable")
	svc := newTestSyncService(repo, client)

	// Product arrives as a bare id, forcing the name lookup.
	sub := fullStripeSub("sub_1", "cus_a")
	sub.Items.Data[0].Price.Product = &stripe.Product{ID: "prod_123"}

	_, err := svc.SyncSubscription(context.Background(), sub)
	require.NoError(t, err)

	require.NotNil(t, user.Subscription.PlanName)
	assert.Equal(t, PlaceholderPlanName, *user.Subscription.PlanName)
	require.NotNil(t, user.Subscription.ProductID)
	assert.Equal(t, "prod_123", *user.Subscription.ProductID)
}

func TestMarkCanceledTouchesOnlyStatusAndTimestamp(t *testing.T) {
	user := linkedUser("user-a", "cus_a")
	planName := "Premium Plan"
	subID := "sub_1"
	user.Subscription = &models.Subscription{
		StripeCustomerID:     "cus_a",
		StripeSubscriptionID: &subID,
		PlanName:             &planName,
		Status:               models.SubStatusActive,
	}
	repo := newFakeUserRepo(user)
	svc := newTestSyncService(repo, newFakeBillingClient())

	sub := &stripe.Subscription{
		ID:         "sub_1",
		Customer:   &stripe.Customer{ID: "cus_a"},
		Status:     stripe.SubscriptionStatusCanceled,
		CanceledAt: 1705000000,
	}

	userID, err := svc.MarkCanceled(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "user-a", userID)

	rec := user.Subscription
	assert.Equal(t, models.SubStatusCanceled, rec.Status)
	require.NotNil(t, rec.CanceledAt)
	assert.Equal(t, int64(1705000000), rec.CanceledAt.Unix())
	// Previously synced fields survive untouched.
	require.NotNil(t, rec.PlanName)
	assert.Equal(t, "Premium Plan", *rec.PlanName)
	require.NotNil(t, rec.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *rec.StripeSubscriptionID)
}

func TestSyncAllAggregatesOutcomes(t *testing.T) {
	synced := linkedUser("user-1", "cus_synced")
	noSub := linkedUser("user-2", "cus_empty")
	failing := linkedUser("user-3", "cus_broken")
	unlinked := &models.User{ID: "user-4", Email: "d@example.com", Status: models.StatusActive}
	repo := newFakeUserRepo(synced, noSub, failing, unlinked)

	client := newFakeBillingClient()
	client.subsByCustomer["cus_synced"] = []*stripe.Subscription{fullStripeSub("sub_1", "cus_synced")}
	client.listErr["cus_broken"] = errors.New("rate limited")

	svc := newTestSyncService(repo, client)
	report, err := svc.SyncAll(context.Background())
	require.NoError(t, err)

	// Unlinked accounts are skipped entirely, not counted as failures.
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 1, report.NoSubscription)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 3)

	byUser := make(map[string]SyncOutcome, len(report.Outcomes))
	for _, o := range report.Outcomes {
		byUser[o.UserID] = o
	}
	assert.Equal(t, OutcomeSynced, byUser["user-1"].Outcome)
	assert.Equal(t, OutcomeNoSubscription, byUser["user-2"].Outcome)
	assert.Equal(t, OutcomeFailed, byUser["user-3"].Outcome)
	assert.Contains(t, byUser["user-3"].Error, "rate limited")
	assert.NotContains(t, byUser, "user-4")
}
