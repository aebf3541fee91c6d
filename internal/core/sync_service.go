package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/billing"
	"healthpanel-backend-go/internal/db"
	"healthpanel-backend-go/internal/models"
)

// ErrNoLinkedAccount is returned when a billing object cannot be resolved to
// any account, neither via metadata nor via a stored billing-customer-id.
var ErrNoLinkedAccount = errors.New("no account linked to billing object")

// PlaceholderPlanName is persisted when the product lookup fails. Name
// resolution is best-effort and never fails a sync.
const PlaceholderPlanName = "Unknown Plan"

// Per-account outcomes reported by bulk reconciliation.
const (
	OutcomeSynced         = "synced"
	OutcomeNoSubscription = "no_subscription"
	OutcomeFailed         = "failed"
)

// SyncOutcome is one account's result within a bulk run.
type SyncOutcome struct {
	UserID     string `json:"userId"`
	CustomerID string `json:"customerId"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
}

// SyncReport aggregates a bulk reconciliation run.
type SyncReport struct {
	Total          int           `json:"total"`
	Synced         int           `json:"synced"`
	NoSubscription int           `json:"noSubscription"`
	Failed         int           `json:"failed"`
	Outcomes       []SyncOutcome `json:"outcomes"`
}

// syncService implements the SyncService interface. It is the only writer of
// subscription sub-records; handlers never accept them as user input.
type syncService struct {
	userRepo db.UserRepository
	client   billing.Client
	// delay between upstream calls in bulk mode; rate limiting only, not
	// needed for correctness.
	interCallDelay time.Duration
	logger         *zap.Logger
}

// NewSyncService creates a new SyncService instance.
func NewSyncService(userRepo db.UserRepository, client billing.Client, interCallDelay time.Duration, logger *zap.Logger) SyncService {
	return &syncService{
		userRepo:       userRepo,
		client:         client,
		interCallDelay: interCallDelay,
		logger:         logger,
	}
}

// SyncSubscription reconciles one billing subscription onto its account.
// Reapplying the same upstream state overwrites the sub-record with identical
// content (updatedAt aside); nothing accumulates.
func (s *syncService) SyncSubscription(ctx context.Context, sub *stripe.Subscription) (string, error) {
	user, err := s.resolveAccount(ctx, sub)
	if err != nil {
		return "", err
	}

	record := s.buildRecord(ctx, user, sub)
	if err := s.userRepo.UpdateSubscription(ctx, user.ID, record); err != nil {
		return "", fmt.Errorf("failed to persist subscription for user '%s': %w", user.ID, err)
	}

	s.logger.Info("Subscription reconciled",
		zap.String("userId", user.ID),
		zap.String("subscriptionId", sub.ID),
		zap.String("status", record.Status))
	return user.ID, nil
}

// SyncCustomer polls the customer's subscriptions and reconciles the account.
func (s *syncService) SyncCustomer(ctx context.Context, customerID string) (string, error) {
	user, err := s.userRepo.GetByStripeCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: customer '%s'", ErrNoLinkedAccount, customerID)
		}
		return "", fmt.Errorf("failed to look up account for customer '%s': %w", customerID, err)
	}
	if _, err := s.reconcileCustomer(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// SyncUser reconciles one account by its stored billing-customer-id.
func (s *syncService) SyncUser(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return fmt.Errorf("failed to load user '%s': %w", userID, err)
	}
	if user.StripeCustomerID() == "" {
		return fmt.Errorf("%w: '%s'", ErrNoBillingCustomer, userID)
	}
	_, err = s.reconcileCustomer(ctx, user)
	return err
}

// MarkCanceled records a subscription deletion without a full reconciliation
// pass: only status and the canceled timestamp change.
func (s *syncService) MarkCanceled(ctx context.Context, sub *stripe.Subscription) (string, error) {
	user, err := s.resolveAccount(ctx, sub)
	if err != nil {
		return "", err
	}

	record := user.Subscription
	if record == nil {
		record = s.buildRecord(ctx, user, sub)
	}
	record.Status = models.SubStatusCanceled
	canceledAt := time.Now().UTC()
	if sub.CanceledAt > 0 {
		canceledAt = time.Unix(sub.CanceledAt, 0).UTC()
	}
	record.CanceledAt = &canceledAt
	record.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.UpdateSubscription(ctx, user.ID, record); err != nil {
		return "", fmt.Errorf("failed to mark subscription canceled for user '%s': %w", user.ID, err)
	}

	s.logger.Info("Subscription marked canceled",
		zap.String("userId", user.ID),
		zap.String("subscriptionId", sub.ID))
	return user.ID, nil
}

// SyncAll bulk-reconciles every account carrying a billing-customer-id.
// Individual failures are recorded, never fatal to the run.
func (s *syncService) SyncAll(ctx context.Context) (*SyncReport, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for bulk sync: %w", err)
	}

	report := &SyncReport{}
	first := true
	for _, user := range users {
		customerID := user.StripeCustomerID()
		if customerID == "" {
			continue
		}
		if !first && s.interCallDelay > 0 {
			time.Sleep(s.interCallDelay)
		}
		first = false
		report.Total++

		outcome := SyncOutcome{UserID: user.ID, CustomerID: customerID}
		result, err := s.reconcileCustomer(ctx, user)
		if err != nil {
			outcome.Outcome = OutcomeFailed
			outcome.Error = err.Error()
			report.Failed++
			s.logger.Warn("Bulk sync: account failed",
				zap.String("userId", user.ID), zap.Error(err))
		} else {
			outcome.Outcome = result
			if result == OutcomeNoSubscription {
				report.NoSubscription++
			} else {
				report.Synced++
			}
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	s.logger.Info("Bulk subscription sync finished",
		zap.Int("total", report.Total),
		zap.Int("synced", report.Synced),
		zap.Int("noSubscription", report.NoSubscription),
		zap.Int("failed", report.Failed))
	return report, nil
}

// reconcileCustomer applies the poll-based reconciliation for one account.
func (s *syncService) reconcileCustomer(ctx context.Context, user *models.User) (string, error) {
	customerID := user.StripeCustomerID()
	subs, err := s.client.ListSubscriptions(ctx, customerID, "all")
	if err != nil {
		return "", fmt.Errorf("failed to list subscriptions for customer '%s': %w", customerID, err)
	}

	if len(subs) == 0 {
		// Known customer, nothing upstream: write the sentinel and clear the
		// subscription identifiers.
		record := &models.Subscription{
			StripeCustomerID: customerID,
			Status:           models.SubStatusNoSubscription,
			UpdatedAt:        time.Now().UTC(),
		}
		if err := s.userRepo.UpdateSubscription(ctx, user.ID, record); err != nil {
			return "", fmt.Errorf("failed to persist no_subscription for user '%s': %w", user.ID, err)
		}
		return OutcomeNoSubscription, nil
	}

	record := s.buildRecord(ctx, user, pickRelevant(subs))
	if err := s.userRepo.UpdateSubscription(ctx, user.ID, record); err != nil {
		return "", fmt.Errorf("failed to persist subscription for user '%s': %w", user.ID, err)
	}
	return OutcomeSynced, nil
}

// pickRelevant chooses the subscription to persist when a customer carries
// several: a live one wins over historical/canceled entries.
func pickRelevant(subs []*stripe.Subscription) *stripe.Subscription {
	for _, sub := range subs {
		if sub.Status == stripe.SubscriptionStatusActive || sub.Status == stripe.SubscriptionStatusTrialing {
			return sub
		}
	}
	return subs[0]
}

// resolveAccount finds the account a billing subscription belongs to: the
// metadata link set at checkout wins, then the stored billing-customer-id.
func (s *syncService) resolveAccount(ctx context.Context, sub *stripe.Subscription) (*models.User, error) {
	if userID := sub.Metadata[MetadataUserIDKey]; userID != "" {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user '%s' from metadata: %w", userID, err)
		}
		// Stale metadata; fall through to the customer-id lookup.
	}

	if sub.Customer == nil || sub.Customer.ID == "" {
		return nil, fmt.Errorf("%w: subscription '%s' has no customer", ErrNoLinkedAccount, sub.ID)
	}
	user, err := s.userRepo.GetByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer '%s'", ErrNoLinkedAccount, sub.Customer.ID)
		}
		return nil, fmt.Errorf("failed to look up account for customer '%s': %w", sub.Customer.ID, err)
	}
	return user, nil
}

// buildRecord normalizes a billing subscription into the persisted sub-record
// shape. Absent optional fields become explicit nulls: the store rejects
// undefined values and readers rely on every key existing.
func (s *syncService) buildRecord(ctx context.Context, user *models.User, sub *stripe.Subscription) *models.Subscription {
	record := &models.Subscription{
		StripeCustomerID:  user.StripeCustomerID(),
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		UpdatedAt:         time.Now().UTC(),
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		record.StripeCustomerID = sub.Customer.ID
	}
	if sub.ID != "" {
		id := sub.ID
		record.StripeSubscriptionID = &id
	}

	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		priceID := price.ID
		record.PriceID = &priceID

		// The product arrives either as a bare id or as an expanded object;
		// the SDK models both as *Product with only ID set in the bare case.
		if price.Product != nil && price.Product.ID != "" {
			productID := price.Product.ID
			record.ProductID = &productID
			record.PlanName = s.resolvePlanName(ctx, price.Product)
		}
	}

	if sub.CurrentPeriodStart > 0 {
		t := time.Unix(sub.CurrentPeriodStart, 0).UTC()
		record.CurrentPeriodStart = &t
	}
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		record.CurrentPeriodEnd = &t
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0).UTC()
		record.CanceledAt = &t
	}
	if sub.Created > 0 {
		t := time.Unix(sub.Created, 0).UTC()
		record.CreatedAt = &t
	}

	return record
}

// resolvePlanName returns the product's display name, looking it up when the
// object was not expanded. Lookup failure is non-fatal and yields the
// placeholder.
func (s *syncService) resolvePlanName(ctx context.Context, product *stripe.Product) *string {
	if product.Name != "" {
		name := product.Name
		return &name
	}
	name, err := s.client.GetProductName(ctx, product.ID)
	if err != nil || name == "" {
		s.logger.Warn("Product name lookup failed, using placeholder",
			zap.String("productId", product.ID), zap.Error(err))
		placeholder := PlaceholderPlanName
		return &placeholder
	}
	return &name
}
