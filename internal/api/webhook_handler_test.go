package api

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/billing"
	"healthpanel-backend-go/internal/core"
)

const testWebhookSecret = "whsec_test_secret"

// recordingSyncService captures which reconciliation entry points the webhook
// handler invoked.
type recordingSyncService struct {
	syncedSubs      []string
	syncedCustomers []string
	canceledSubs    []string
	failWith        error
}

func (s *recordingSyncService) SyncSubscription(_ context.Context, sub *stripe.Subscription) (string, error) {
	if s.failWith != nil {
		return "", s.failWith
	}
	s.syncedSubs = append(s.syncedSubs, sub.ID)
	return "user-1", nil
}

func (s *recordingSyncService) SyncCustomer(_ context.Context, customerID string) (string, error) {
	if s.failWith != nil {
		return "", s.failWith
	}
	s.syncedCustomers = append(s.syncedCustomers, customerID)
	return "user-1", nil
}

func (s *recordingSyncService) SyncUser(context.Context, string) error {
	return nil
}

func (s *recordingSyncService) MarkCanceled(_ context.Context, sub *stripe.Subscription) (string, error) {
	s.canceledSubs = append(s.canceledSubs, sub.ID)
	return "user-1", nil
}

func (s *recordingSyncService) SyncAll(context.Context) (*core.SyncReport, error) {
	return &core.SyncReport{}, nil
}

// verifyingBillingClient runs the real signature verification while canning
// the retrieval calls.
type verifyingBillingClient struct {
	subs map[string]*stripe.Subscription
}

func (c *verifyingBillingClient) CreateCustomer(context.Context, string, string, map[string]string) (string, error) {
	return "", errors.New("not supported in test")
}

func (c *verifyingBillingClient) CreateCheckoutSession(context.Context, billing.CheckoutSessionParams) (string, error) {
	return "", errors.New("not supported in test")
}

func (c *verifyingBillingClient) CreatePortalSession(context.Context, string, string) (string, error) {
	return "", errors.New("not supported in test")
}

func (c *verifyingBillingClient) ListSubscriptions(context.Context, string, string) ([]*stripe.Subscription, error) {
	return nil, nil
}

func (c *verifyingBillingClient) GetSubscription(_ context.Context, subscriptionID string) (*stripe.Subscription, error) {
	sub, ok := c.subs[subscriptionID]
	if !ok {
		return nil, errors.New("subscription not found")
	}
	return sub, nil
}

func (c *verifyingBillingClient) GetProductName(context.Context, string) (string, error) {
	return "", nil
}

func (c *verifyingBillingClient) ConstructWebhookEvent(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// signPayload builds a Stripe-Signature header the same way Stripe does:
// v1 = HMAC-SHA256(secret, "<timestamp>.<payload>").
func signPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts.Unix(), payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func webhookTestRouter(syncSvc *recordingSyncService, client billing.Client, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewWebhookHandler(client, syncSvc, secret, nil, nil, zap.NewNop())
	router := gin.New()
	router.POST("/webhooks/stripe", handler.HandleStripeWebhook)
	return router
}

func postWebhook(router *gin.Engine, payload []byte, sigHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func eventPayload(eventType, objectJSON string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_test","object":"event","api_version":"2024-11-20","type":"%s","data":{"object":%s}}`, eventType, objectJSON))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	syncSvc := &recordingSyncService{}
	router := webhookTestRouter(syncSvc, &verifyingBillingClient{}, testWebhookSecret)

	payload := eventPayload("customer.subscription.updated", `{"id":"sub_1","object":"subscription","customer":"cus_1","status":"active"}`)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"garbage header", "t=123,v1=deadbeef"},
		{"wrong secret", signPayload(payload, "whsec_other", time.Now())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postWebhook(router, payload, tc.header)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// Nothing may have been reconciled off an unverified payload.
	assert.Empty(t, syncSvc.syncedSubs)
	assert.Empty(t, syncSvc.canceledSubs)
}

func TestWebhookMissingSecretConfig(t *testing.T) {
	syncSvc := &recordingSyncService{}
	router := webhookTestRouter(syncSvc, &verifyingBillingClient{}, "")

	payload := eventPayload("customer.subscription.updated", `{"id":"sub_1","object":"subscription"}`)
	w := postWebhook(router, payload, signPayload(payload, testWebhookSecret, time.Now()))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, syncSvc.syncedSubs)
}

func TestWebhookSubscriptionUpdatedReconciles(t *testing.T) {
	syncSvc := &recordingSyncService{}
	router := webhookTestRouter(syncSvc, &verifyingBillingClient{}, testWebhookSecret)

	payload := eventPayload("customer.subscription.updated", `{"id":"sub_1","object":"subscription","customer":"cus_1","status":"active"}`)
	w := postWebhook(router, payload, signPayload(payload, testWebhookSecret, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, []string{"sub_1"}, syncSvc.syncedSubs)
}

func TestWebhookSubscriptionDeletedMarksCanceled(t *testing.T) {
	syncSvc := &recordingSyncService{}
	router := webhookTestRouter(syncSvc, &verifyingBillingClient{}, testWebhookSecret)

	payload := eventPayload("customer.subscription.deleted", `{"id":"sub_1","object":"subscription","customer":"cus_1","status":"canceled","canceled_at":1705000000}`)
	w := postWebhook(router, payload, signPayload(payload, testWebhookSecret, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"sub_1"}, syncSvc.canceledSubs)
	assert.Empty(t, syncSvc.syncedSubs)
}

func TestWebhookCheckoutCompletedFetchesSubscription(t *testing.T) {
	syncSvc := &recordingSyncService{}
	client := &verifyingBillingClient{subs: map[string]*stripe.Subscription{
		"sub_new": {ID: "sub_new", Status: stripe.SubscriptionStatusActive},
	}}
	router := webhookTestRouter(syncSvc, client, testWebhookSecret)

	payload := eventPayload("checkout.session.completed", `{"id":"cs_1","object":"checkout.session","mode":"subscription","subscription":"sub_new","customer":"cus_1"}`)
	w := postWebhook(router, payload, signPayload(payload, testWebhookSecret, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, []string{"sub_new"}, syncSvc.syncedSubs)
}

func TestWebhookInvoicePaidReconcilesBySubscription(t *testing.T) {
	syncSvc := &recordingSyncService{}
	client := &verifyingBillingClient{subs: map[string]*stripe.Subscription{
		"sub_1": {ID: "sub_1", Status: stripe.SubscriptionStatusActive},
	}}
	router := webhookTestRouter(syncSvc, client, testWebhookSecret)

	payload := eventPayload("invoice.paid", `{"id":"in_1","object":"invoice","customer":"cus_1","subscription":"sub_1"}`)
	w := postWebhook(router, payload, signPayload(payload, testWebhookSecret, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"sub_1"}, syncSvc.syncedSubs)
}

func TestWebhookInvoiceWithoutSubscriptionReconcilesCustomer(t *testing.T) {
	syncSvc := &recordingSyncService{}
	router := webhookTestRouter(syncSvc, &verifyingBillingClient{}, testWebhookSecret)

	payload := eventPayload("invoice.paid", `{"id":"in_1","object":"invoice","customer":"cus_1"}`)
	w := postWebhook(router, payload, signPayload(payload, testWebhookSecret, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, []string{"cus_1"}, syncSvc.syncedCustomers)
	assert.Empty(t, syncSvc.syncedSubs)
}

func TestWebhookUnknownEventAcknowledged(t *testing.T) {
	syncSvc := &recordingSyncService{}
	router := webhookTestRouter(syncSvc, &verifyingBillingClient{}, testWebhookSecret)

	payload := eventPayload("customer.created", `{"id":"cus_1","object":"customer"}`)
	w := postWebhook(router, payload, signPayload(payload, testWebhookSecret, time.Now()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Empty(t, syncSvc.syncedSubs)
	assert.Empty(t, syncSvc.canceledSubs)
}

func TestWebhookProcessingFailureStillAcknowledged(t *testing.T) {
	syncSvc := &recordingSyncService{failWith: errors.New("store unavailable")}
	router := webhookTestRouter(syncSvc, &verifyingBillingClient{}, testWebhookSecret)

	payload := eventPayload("customer.subscription.updated", `{"id":"sub_1","object":"subscription","customer":"cus_1","status":"active"}`)
	w := postWebhook(router, payload, signPayload(payload, testWebhookSecret, time.Now()))

	// A verified delivery is acknowledged even when processing fails; Stripe
	// drives retries from its side.
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}
