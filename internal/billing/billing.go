// Package billing wraps the Stripe API behind a narrow interface so that
// core services and tests do not depend on the SDK's client plumbing.
package billing

import (
	"context"

	"github.com/stripe/stripe-go/v81"
)

// CheckoutSessionParams carries everything needed to start a subscription
// checkout for an account. Metadata is copied onto the resulting subscription
// so that webhooks can resolve the account without a customer-id lookup.
type CheckoutSessionParams struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// Client is the billing accessor contract. Every call may fail due to
// upstream unavailability; callers treat failures as transient and degrade
// where the operation allows it.
type Client interface {
	// CreateCustomer registers a payer with the billing provider and returns
	// its billing-customer-id.
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error)

	// CreateCheckoutSession creates a subscription-mode checkout session and
	// returns its hosted URL.
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (string, error)

	// CreatePortalSession creates a billing-portal session for an existing
	// customer and returns its hosted URL.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)

	// ListSubscriptions returns the customer's subscriptions with the given
	// status filter ("all" for every status).
	ListSubscriptions(ctx context.Context, customerID, status string) ([]*stripe.Subscription, error)

	// GetSubscription retrieves one subscription by ID.
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)

	// GetProductName retrieves a product's display name. Callers use it
	// best-effort and fall back to a placeholder on error.
	GetProductName(ctx context.Context, productID string) (string, error)

	// ConstructWebhookEvent verifies the signature header against the
	// configured signing secret and parses the event. This is the one
	// mandatory, non-bypassable control on the webhook path.
	ConstructWebhookEvent(payload []byte, sigHeader, secret string) (stripe.Event, error)
}
