package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"brandforge-backend/internal/billing"
	"brandforge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type StripeHandler struct {
	gateway       billing.Gateway
	catalog       *billing.Catalog
	profiles      ProfileStore
	subscriptions SubscriptionStore
	appURL        string
}

func NewStripeHandler(gateway billing.Gateway, catalog *billing.Catalog, profiles ProfileStore, subscriptions SubscriptionStore, appURL string) *StripeHandler {
	return &StripeHandler{
		gateway:       gateway,
		catalog:       catalog,
		profiles:      profiles,
		subscriptions: subscriptions,
		appURL:        appURL,
	}
}

// --- GET /api/plans ---

func (h *StripeHandler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": h.catalog.Plans()})
}

type CheckoutRequest struct {
	PriceID          string `json:"price_id"`
	FunnelResponseID string `json:"funnel_response_id"`
}

// --- POST /api/stripe/checkout ---
//
// Creates a pending subscription row first, then a hosted checkout session
// carrying the row id in its metadata. The webhook flips the row to active
// once the processor confirms payment.

func (h *StripeHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, ok := h.catalog.ByPriceID(req.PriceID)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown price_id")
		return
	}

	profile, err := h.profiles.FindByID(r.Context(), userID)
	if err != nil {
		log.Printf("Error finding profile: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	// Lazily create the processor customer on first checkout.
	customerID := profile.StripeCustomerID
	if customerID == "" {
		customerID, err = h.gateway.EnsureCustomer(r.Context(), profile.Email, profile.Name)
		if err != nil {
			log.Printf("Error creating customer: %v", err)
			writeError(w, http.StatusBadGateway, "payment provider error")
			return
		}
		if err := h.profiles.SetStripeCustomerID(r.Context(), profile.ID, customerID); err != nil {
			log.Printf("Error saving customer id: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	sub := &models.Subscription{
		UserID:   userID,
		PriceID:  plan.PriceID,
		PlanName: plan.Name,
		Amount:   plan.Amount,
		Status:   models.SubscriptionStatusPending,
	}
	if req.FunnelResponseID != "" {
		funnelID, err := bson.ObjectIDFromHex(req.FunnelResponseID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid funnel_response_id")
			return
		}
		sub.FunnelResponseID = &funnelID
	}
	if err := h.subscriptions.Create(r.Context(), sub); err != nil {
		log.Printf("Error creating pending subscription: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	metadata := map[string]string{
		"subscription_id": sub.ID.Hex(),
		"user_id":         userID.Hex(),
	}
	if req.FunnelResponseID != "" {
		metadata["funnel_response_id"] = req.FunnelResponseID
	}

	url, err := h.gateway.CreateCheckoutSession(r.Context(), billing.CheckoutParams{
		CustomerID: customerID,
		PriceID:    plan.PriceID,
		SuccessURL: h.appURL + "/dashboard?checkout=success",
		CancelURL:  h.appURL + "/pricing?checkout=canceled",
		Metadata:   metadata,
	})
	if err != nil {
		log.Printf("Error creating checkout session: %v", err)
		writeError(w, http.StatusBadGateway, "payment provider error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// --- POST /api/stripe/portal ---

func (h *StripeHandler) CreatePortal(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.FindByID(r.Context(), userID)
	if err != nil {
		log.Printf("Error finding profile: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if profile.StripeCustomerID == "" {
		writeError(w, http.StatusBadRequest, "no billing account yet")
		return
	}

	url, err := h.gateway.CreatePortalSession(r.Context(), profile.StripeCustomerID, h.appURL+"/dashboard")
	if err != nil {
		log.Printf("Error creating portal session: %v", err)
		writeError(w, http.StatusBadGateway, "payment provider error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
