package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"brandforge-backend/internal/middleware"
	"brandforge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type SubscriptionHandler struct {
	subscriptions SubscriptionStore
}

func NewSubscriptionHandler(subscriptions SubscriptionStore) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// --- GET /api/subscriptions ---
// Admins see every subscription; clients only their own.

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserRole(r.Context()) == models.RoleAdmin {
		subs, err := h.subscriptions.List(r.Context())
		if err != nil {
			log.Printf("Error listing subscriptions: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, subs)
		return
	}

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	subs, err := h.subscriptions.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing subscriptions: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// --- GET /api/subscriptions/{id} ---

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	sub, err := h.subscriptions.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("Error finding subscription: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	if middleware.GetUserRole(r.Context()) != models.RoleAdmin &&
		sub.UserID.Hex() != middleware.GetUserID(r.Context()) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

type CreateSubscriptionRequest struct {
	UserID               string     `json:"user_id"`
	StripeSubscriptionID string     `json:"stripe_subscription_id"`
	PriceID              string     `json:"price_id"`
	PlanName             string     `json:"plan_name"`
	Amount               int64      `json:"amount"`
	Status               string     `json:"status"`
	NextDueDate          *time.Time `json:"next_due_date"`
}

// --- POST /api/subscriptions ---

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := bson.ObjectIDFromHex(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "valid user_id is required")
		return
	}

	sub := &models.Subscription{
		UserID:               userID,
		StripeSubscriptionID: req.StripeSubscriptionID,
		PriceID:              req.PriceID,
		PlanName:             req.PlanName,
		Amount:               req.Amount,
		Status:               req.Status,
		NextDueDate:          req.NextDueDate,
	}
	if err := h.subscriptions.Create(r.Context(), sub); err != nil {
		log.Printf("Error creating subscription: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create subscription")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

type UpdateSubscriptionRequest struct {
	PlanName    *string    `json:"plan_name"`
	Amount      *int64     `json:"amount"`
	Status      *string    `json:"status"`
	NextDueDate *time.Time `json:"next_due_date"`
}

// --- PUT /api/subscriptions/{id} ---

func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := bson.M{}
	if req.PlanName != nil {
		fields["plan_name"] = *req.PlanName
	}
	if req.Amount != nil {
		fields["amount"] = *req.Amount
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.NextDueDate != nil {
		fields["next_due_date"] = *req.NextDueDate
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := h.subscriptions.Update(r.Context(), id, fields); err != nil {
		log.Printf("Error updating subscription: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update subscription")
		return
	}

	sub, err := h.subscriptions.FindByID(r.Context(), id)
	if err != nil || sub == nil {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// --- DELETE /api/subscriptions/{id} ---

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.subscriptions.Delete(r.Context(), id); err != nil {
		log.Printf("Error deleting subscription: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "subscription deleted"})
}
