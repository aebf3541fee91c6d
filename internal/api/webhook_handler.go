package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/billing"
	"healthpanel-backend-go/internal/core"
	"healthpanel-backend-go/pkg/mailer"
)

// Billing event types the webhook acts on. Anything else is acknowledged
// and ignored.
const (
	eventCheckoutCompleted       = "checkout.session.completed"
	eventSubscriptionCreated     = "customer.subscription.created"
	eventSubscriptionUpdated     = "customer.subscription.updated"
	eventSubscriptionDeleted     = "customer.subscription.deleted"
	eventInvoicePaid             = "invoice.paid"
	eventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	eventInvoicePaymentFailed    = "invoice.payment_failed"
)

// WebhookHandler ingests Stripe webhook deliveries. Signature verification is
// the one mandatory control: no branch runs before it passes.
type WebhookHandler struct {
	client        billing.Client
	syncService   core.SyncService
	webhookSecret string
	mailer        *mailer.Mailer // nil disables payment-failure alerts
	alertsTo      []string
	logger        *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(client billing.Client, ss core.SyncService, webhookSecret string, m *mailer.Mailer, alertsTo []string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		client:        client,
		syncService:   ss,
		webhookSecret: webhookSecret,
		mailer:        m,
		alertsTo:      alertsTo,
		logger:        logger,
	}
}

// HandleStripeWebhook handles POST /api/v1/billing/webhooks/stripe.
// Responses: 400 on bad/missing signature, 500 on missing server
// configuration, otherwise 200 with {received, success}. Processing failures
// after a valid signature are logged and reported via success=false; Stripe
// retries on its own schedule, the handler never retries internally.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	if h.webhookSecret == "" {
		h.logger.Error("Webhook signing secret is not configured")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Webhook not configured"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read request body"})
		return
	}

	event, err := h.client.ConstructWebhookEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.logger.Warn("Webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid webhook signature"})
		return
	}

	if err := h.process(c, event); err != nil {
		h.logger.Error("Webhook processing failed",
			zap.String("eventType", string(event.Type)),
			zap.String("eventId", event.ID),
			zap.Error(err))
		c.JSON(http.StatusOK, WebhookResponse{Received: true, Success: false})
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{Received: true, Success: true})
}

func (h *WebhookHandler) process(c *gin.Context, event stripe.Event) error {
	ctx := c.Request.Context()

	switch string(event.Type) {
	case eventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("failed to parse checkout session: %w", err)
		}
		if sess.Mode != stripe.CheckoutSessionModeSubscription || sess.Subscription == nil || sess.Subscription.ID == "" {
			// Payment-mode checkouts carry no subscription to reconcile.
			return nil
		}
		sub, err := h.client.GetSubscription(ctx, sess.Subscription.ID)
		if err != nil {
			return err
		}
		_, err = h.syncService.SyncSubscription(ctx, sub)
		return err

	case eventSubscriptionCreated, eventSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		_, err := h.syncService.SyncSubscription(ctx, &sub)
		return err

	case eventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		_, err := h.syncService.MarkCanceled(ctx, &sub)
		return err

	case eventInvoicePaid, eventInvoicePaymentSucceeded, eventInvoicePaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("failed to parse invoice: %w", err)
		}
		if string(event.Type) == eventInvoicePaymentFailed {
			h.alertPaymentFailure(&inv)
		}
		if inv.Subscription == nil || inv.Subscription.ID == "" {
			// Some invoices (one-off, proration leftovers) carry no
			// subscription id; reconcile by the customer's current state.
			if inv.Customer == nil || inv.Customer.ID == "" {
				return nil
			}
			_, err := h.syncService.SyncCustomer(ctx, inv.Customer.ID)
			return err
		}
		sub, err := h.client.GetSubscription(ctx, inv.Subscription.ID)
		if err != nil {
			return err
		}
		_, err = h.syncService.SyncSubscription(ctx, sub)
		return err

	default:
		h.logger.Debug("Ignoring webhook event", zap.String("eventType", string(event.Type)))
		return nil
	}
}

// alertPaymentFailure emails the ops list about a failed invoice payment.
// Best-effort: a mail failure never affects webhook processing.
func (h *WebhookHandler) alertPaymentFailure(inv *stripe.Invoice) {
	if h.mailer == nil || len(h.alertsTo) == 0 {
		return
	}
	customerID := ""
	if inv.Customer != nil {
		customerID = inv.Customer.ID
	}
	subject := "Payment failed for customer " + customerID
	body := fmt.Sprintf("Invoice %s for customer %s failed payment (amount due: %d %s).",
		inv.ID, customerID, inv.AmountDue, inv.Currency)
	if err := h.mailer.Send(h.alertsTo, subject, body); err != nil {
		h.logger.Warn("Failed to send payment-failure alert", zap.Error(err))
	}
}
