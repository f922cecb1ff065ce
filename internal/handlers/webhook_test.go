package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brandforge-backend/internal/billing"
	"brandforge-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const testWebhookSecret = "whsec_test"

// signPayload produces a Stripe-Signature header the verifier accepts.
func signPayload(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

type webhookFixture struct {
	handler       *WebhookHandler
	ledger        *memLedger
	subscriptions *memSubscriptionStore
	projects      *memProjectStore
	funnels       *memFunnelStore
	gateway       *billing.MockGateway
}

func newWebhookFixture() *webhookFixture {
	f := &webhookFixture{
		ledger:        newMemLedger(),
		subscriptions: newMemSubscriptionStore(),
		projects:      newMemProjectStore(),
		funnels:       newMemFunnelStore(),
		gateway:       billing.NewMockGateway(),
	}
	catalog := billing.NewCatalog(billing.DefaultPlans("price_s", "price_g", "price_x"))
	f.handler = NewWebhookHandler(f.ledger, f.subscriptions, f.projects, f.funnels, f.gateway, catalog, testWebhookSecret)
	return f
}

func (f *webhookFixture) deliver(t *testing.T, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signPayload(payload))
	rec := httptest.NewRecorder()
	f.handler.HandleEvent(rec, req)
	return rec
}

func checkoutCompletedPayload(eventID, subscriptionIDHex string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"object": "checkout.session",
				"metadata": {"subscription_id": %q},
				"subscription": "sub_remote_1"
			}
		}
	}`, eventID, subscriptionIDHex))
}

func subscriptionEventPayload(eventID, eventType, stripeSubID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": %q,
		"data": {
			"object": {
				"id": %q,
				"object": "subscription",
				"status": "active"
			}
		}
	}`, eventID, eventType, stripeSubID))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture()

	payload := checkoutCompletedPayload("evt_1", bson.NewObjectID().Hex())
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	rec := httptest.NewRecorder()
	f.handler.HandleEvent(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookCheckoutCompletedActivatesAndCreatesProject(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	// Funnel response attached to the purchase.
	response, err := f.funnels.Upsert(ctx, bson.M{"anonymous_id": "anon-1", "user_id": nil},
		map[string]string{"goals": "more signups"}, 4, true)
	require.NoError(t, err)

	userID := bson.NewObjectID()
	sub := &models.Subscription{
		UserID:           userID,
		FunnelResponseID: &response.ID,
		PriceID:          "price_g",
		PlanName:         billing.PlanGrowth,
		Amount:           249900,
		Status:           models.SubscriptionStatusPending,
	}
	require.NoError(t, f.subscriptions.Create(ctx, sub))

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Second)
	f.gateway.Subscriptions["sub_remote_1"] = &billing.SubscriptionInfo{
		ID:               "sub_remote_1",
		PriceID:          "price_g",
		Status:           "active",
		Amount:           249900,
		CurrentPeriodEnd: periodEnd,
	}

	rec := f.deliver(t, checkoutCompletedPayload("evt_1", sub.ID.Hex()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated, err := f.subscriptions.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, updated.Status)
	assert.Equal(t, "sub_remote_1", updated.StripeSubscriptionID)
	require.NotNil(t, updated.NextDueDate)
	assert.WithinDuration(t, periodEnd, *updated.NextDueDate, time.Second)

	projects, err := f.projects.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, userID, projects[0].UserID)
	assert.Equal(t, models.ProjectStatusOnboarding, projects[0].Status)
	assert.Contains(t, projects[0].Summary, "more signups")
}

func TestWebhookRedeliveryIsIdempotent(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	response, err := f.funnels.Upsert(ctx, bson.M{"anonymous_id": "anon-1", "user_id": nil},
		map[string]string{"goals": "rebrand"}, 4, true)
	require.NoError(t, err)

	sub := &models.Subscription{
		UserID:           bson.NewObjectID(),
		FunnelResponseID: &response.ID,
		PriceID:          "price_s",
		PlanName:         billing.PlanStarter,
		Status:           models.SubscriptionStatusPending,
	}
	require.NoError(t, f.subscriptions.Create(ctx, sub))

	payload := checkoutCompletedPayload("evt_dup", sub.ID.Hex())
	rec := f.deliver(t, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	// Redelivery of the same event id must not create a second project.
	rec = f.deliver(t, payload)
	require.Equal(t, http.StatusOK, rec.Code)

	projects, err := f.projects.List(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestWebhookCheckoutWithoutFunnelSkipsProject(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	sub := &models.Subscription{
		UserID:   bson.NewObjectID(),
		PriceID:  "price_s",
		PlanName: billing.PlanStarter,
		Status:   models.SubscriptionStatusPending,
	}
	require.NoError(t, f.subscriptions.Create(ctx, sub))

	rec := f.deliver(t, checkoutCompletedPayload("evt_nf", sub.ID.Hex()))
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := f.subscriptions.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, updated.Status)

	projects, err := f.projects.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestWebhookSubscriptionUpdatedOverwrites(t *testing.T) {
	f := newWebhookFixture()
	ctx := context.Background()

	sub := &models.Subscription{
		UserID:               bson.NewObjectID(),
		StripeSubscriptionID: "sub_remote_2",
		PriceID:              "price_s",
		PlanName:             billing.PlanStarter,
		Amount:               99900,
		Status:               models.SubscriptionStatusActive,
	}
	require.NoError(t, f.subscriptions.Create(ctx, sub))

	f.gateway.Subscriptions["sub_remote_2"] = &billing.SubscriptionInfo{
		ID:               "sub_remote_2",
		PriceID:          "price_g",
		Status:           "past_due",
		Amount:           249900,
		CurrentPeriodEnd: time.Now().Add(24 * time.Hour),
	}

	rec := f.deliver(t, subscriptionEventPayload("evt_upd", "customer.subscription.updated", "sub_remote_2"))
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := f.subscriptions.FindByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPastDue, updated.Status)
	assert.Equal(t, billing.PlanGrowth, updated.PlanName)
	assert.Equal(t, int64(249900), updated.Amount)
}

func TestWebhookSubscriptionDeletedCancels(t *testing.T) {
	ctx := context.Background()

	for _, prior := range []string{
		models.SubscriptionStatusPending,
		models.SubscriptionStatusActive,
		models.SubscriptionStatusPastDue,
	} {
		f := newWebhookFixture()
		sub := &models.Subscription{
			UserID:               bson.NewObjectID(),
			StripeSubscriptionID: "sub_remote_3",
			Status:               prior,
		}
		require.NoError(t, f.subscriptions.Create(ctx, sub))

		rec := f.deliver(t, subscriptionEventPayload("evt_del", "customer.subscription.deleted", "sub_remote_3"))
		require.Equal(t, http.StatusOK, rec.Code)

		updated, err := f.subscriptions.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionStatusCanceled, updated.Status, "prior status %s", prior)
	}
}

func TestWebhookIgnoresUnknownEventType(t *testing.T) {
	f := newWebhookFixture()

	payload := []byte(`{"id":"evt_x","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`)
	rec := f.deliver(t, payload)

	assert.Equal(t, http.StatusOK, rec.Code)
	seen, err := f.ledger.Seen(context.Background(), "evt_x")
	require.NoError(t, err)
	assert.False(t, seen, "unhandled events are not recorded")
}
