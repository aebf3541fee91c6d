package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"healthpanel-backend-go/internal/billing"
	"healthpanel-backend-go/internal/db"
	"healthpanel-backend-go/internal/models"
)

// ErrNoBillingCustomer is returned when an account has no billing-customer-id
// and the operation requires one.
var ErrNoBillingCustomer = errors.New("user has no billing customer")

// MetadataUserIDKey is the metadata key carrying the account link on billing
// objects, set at checkout time and read back during reconciliation.
const MetadataUserIDKey = "userId"

// billingService implements the BillingService interface.
type billingService struct {
	userRepo   db.UserRepository
	client     billing.Client
	appBaseURL string
	logger     *zap.Logger
}

// NewBillingService creates a new BillingService instance.
func NewBillingService(userRepo db.UserRepository, client billing.Client, appBaseURL string, logger *zap.Logger) BillingService {
	return &billingService{
		userRepo:   userRepo,
		client:     client,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		logger:     logger,
	}
}

// CreateCheckoutSession starts a subscription checkout for the account,
// creating and linking a billing customer first if none exists.
func (s *billingService) CreateCheckoutSession(ctx context.Context, userID, priceID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return "", fmt.Errorf("failed to load user '%s': %w", userID, err)
	}

	customerID := user.StripeCustomerID()
	if customerID == "" {
		name := strings.TrimSpace(user.FirstName + " " + user.LastName)
		customerID, err = s.client.CreateCustomer(ctx, user.Email, name, map[string]string{
			MetadataUserIDKey: user.ID,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create billing customer for user '%s': %w", userID, err)
		}

		// Link the customer immediately so a webhook arriving before checkout
		// completion can already resolve the account by customer id.
		sub := user.Subscription
		if sub == nil {
			sub = &models.Subscription{Status: models.SubStatusNoSubscription}
		}
		sub.StripeCustomerID = customerID
		if err := s.userRepo.UpdateSubscription(ctx, user.ID, sub); err != nil {
			return "", fmt.Errorf("failed to persist billing customer for user '%s': %w", userID, err)
		}
	}

	url, err := s.client.CreateCheckoutSession(ctx, billing.CheckoutSessionParams{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: s.appBaseURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.appBaseURL + "/billing/cancelled",
		Metadata:   map[string]string{MetadataUserIDKey: user.ID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session for user '%s': %w", userID, err)
	}

	s.logger.Info("Checkout session created",
		zap.String("userId", user.ID),
		zap.String("customerId", customerID),
		zap.String("priceId", priceID))
	return url, nil
}

// CreatePortalSession opens the billing portal for an account that already
// has a billing customer.
func (s *billingService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: '%s'", ErrUserNotFound, userID)
		}
		return "", fmt.Errorf("failed to load user '%s': %w", userID, err)
	}

	customerID := user.StripeCustomerID()
	if customerID == "" {
		return "", fmt.Errorf("%w: '%s'", ErrNoBillingCustomer, userID)
	}

	url, err := s.client.CreatePortalSession(ctx, customerID, s.appBaseURL+"/billing")
	if err != nil {
		return "", fmt.Errorf("failed to create portal session for user '%s': %w", userID, err)
	}
	return url, nil
}
