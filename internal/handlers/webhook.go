package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"brandforge-backend/internal/billing"
	"brandforge-backend/internal/models"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const maxWebhookBody = 65536

type WebhookHandler struct {
	ledger        WebhookLedger
	subscriptions SubscriptionStore
	projects      ProjectStore
	funnels       FunnelStore
	gateway       billing.Gateway
	catalog       *billing.Catalog
	webhookSecret string
}

func NewWebhookHandler(ledger WebhookLedger, subscriptions SubscriptionStore, projects ProjectStore, funnels FunnelStore, gateway billing.Gateway, catalog *billing.Catalog, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		ledger:        ledger,
		subscriptions: subscriptions,
		projects:      projects,
		funnels:       funnels,
		gateway:       gateway,
		catalog:       catalog,
		webhookSecret: webhookSecret,
	}
}

// --- POST /api/stripe/webhook ---
//
// Stripe redelivers events until it sees a 2xx, so the handler is written
// to be safe under redelivery: the event-id ledger is consulted before any
// mutation and written only after the mutation succeeded. A failed write
// returns 500 and lets Stripe retry.

func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		writeError(w, http.StatusBadRequest, "invalid signature")
		return
	}

	seen, err := h.ledger.Seen(r.Context(), event.ID)
	if err != nil {
		log.Printf("Error checking event ledger: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if seen {
		// Redelivery of an already-applied event.
		writeJSON(w, http.StatusOK, map[string]string{"status": "already processed"})
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		err = h.handleCheckoutCompleted(r, event.Data.Raw)
	case stripe.EventTypeCustomerSubscriptionUpdated:
		err = h.handleSubscriptionUpdated(r, event.Data.Raw)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		err = h.handleSubscriptionDeleted(r, event.Data.Raw)
	default:
		// Unhandled event types are acknowledged without a ledger entry.
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	if err != nil {
		log.Printf("Error processing %s (%s): %v", event.Type, event.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to process event")
		return
	}

	if err := h.ledger.MarkProcessed(r.Context(), event.ID, string(event.Type)); err != nil {
		log.Printf("Error recording event %s: %v", event.ID, err)
		writeError(w, http.StatusInternalServerError, "failed to record event")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

// handleCheckoutCompleted flips the pending subscription named in the
// session metadata to active and, when a funnel reference is attached,
// creates the project kicked off by the purchase.
func (h *WebhookHandler) handleCheckoutCompleted(r *http.Request, raw json.RawMessage) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	subIDHex := sess.Metadata["subscription_id"]
	if subIDHex == "" {
		return fmt.Errorf("checkout session %s has no subscription_id metadata", sess.ID)
	}
	subID, err := bson.ObjectIDFromHex(subIDHex)
	if err != nil {
		return fmt.Errorf("bad subscription_id metadata %q: %w", subIDHex, err)
	}

	sub, err := h.subscriptions.FindByID(r.Context(), subID)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("no subscription row for %s", subIDHex)
	}

	fields := bson.M{"status": models.SubscriptionStatusActive}
	if sess.Subscription != nil && sess.Subscription.ID != "" {
		info, err := h.gateway.GetSubscription(r.Context(), sess.Subscription.ID)
		if err != nil {
			return err
		}
		fields["stripe_subscription_id"] = info.ID
		fields["price_id"] = info.PriceID
		fields["plan_name"] = h.catalog.PlanNameForPrice(info.PriceID)
		fields["amount"] = info.Amount
		fields["next_due_date"] = info.CurrentPeriodEnd
	}
	if err := h.subscriptions.Update(r.Context(), subID, fields); err != nil {
		return err
	}

	// Only a first activation spawns a project; redeliveries are already
	// filtered by the ledger, this guards manual replays.
	if sub.Status != models.SubscriptionStatusPending || sub.FunnelResponseID == nil {
		return nil
	}

	summary := fmt.Sprintf("New %s engagement", sub.PlanName)
	if response, err := h.funnels.FindByID(r.Context(), *sub.FunnelResponseID); err == nil && response != nil {
		if goals := response.StepData["goals"]; goals != "" {
			summary = fmt.Sprintf("New %s engagement — goals: %s", sub.PlanName, goals)
		}
	}

	project := &models.Project{
		UserID:           sub.UserID,
		FunnelResponseID: sub.FunnelResponseID,
		PlanName:         sub.PlanName,
		Status:           models.ProjectStatusOnboarding,
		Summary:          summary,
	}
	return h.projects.Create(r.Context(), project)
}

// handleSubscriptionUpdated overwrites the mirrored fields with whatever
// the processor reports. An unmatched subscription id is acknowledged and
// skipped; there is nothing local to sync.
func (h *WebhookHandler) handleSubscriptionUpdated(r *http.Request, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	info, err := h.gateway.GetSubscription(r.Context(), sub.ID)
	if err != nil {
		return err
	}

	matched, err := h.subscriptions.UpdateByStripeID(r.Context(), sub.ID, bson.M{
		"status":        localSubscriptionStatus(info.Status),
		"price_id":      info.PriceID,
		"plan_name":     h.catalog.PlanNameForPrice(info.PriceID),
		"amount":        info.Amount,
		"next_due_date": info.CurrentPeriodEnd,
	})
	if err != nil {
		return err
	}
	if !matched {
		log.Printf("No local row for processor subscription %s, skipping", sub.ID)
	}
	return nil
}

// handleSubscriptionDeleted cancels the local row regardless of its prior
// status.
func (h *WebhookHandler) handleSubscriptionDeleted(r *http.Request, raw json.RawMessage) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	matched, err := h.subscriptions.UpdateByStripeID(r.Context(), sub.ID, bson.M{
		"status": models.SubscriptionStatusCanceled,
	})
	if err != nil {
		return err
	}
	if !matched {
		log.Printf("No local row for processor subscription %s, skipping", sub.ID)
	}
	return nil
}

// localSubscriptionStatus folds Stripe's status vocabulary into the four
// states the dashboard shows.
func localSubscriptionStatus(processorStatus string) string {
	switch processorStatus {
	case "active", "trialing":
		return models.SubscriptionStatusActive
	case "past_due", "unpaid", "incomplete":
		return models.SubscriptionStatusPastDue
	case "canceled", "incomplete_expired":
		return models.SubscriptionStatusCanceled
	default:
		return models.SubscriptionStatusPending
	}
}
