package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"brandforge-backend/internal/funnel"
	"brandforge-backend/internal/middleware"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type FunnelHandler struct {
	funnels FunnelStore
}

func NewFunnelHandler(funnels FunnelStore) *FunnelHandler {
	return &FunnelHandler{funnels: funnels}
}

type SaveFunnelRequest struct {
	AnonymousID string            `json:"anonymous_id"`
	StepData    map[string]string `json:"step_data"`
	CurrentStep int               `json:"current_step"`
}

// --- GET /api/funnel/steps ---

func (h *FunnelHandler) GetSteps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"steps": funnel.Steps})
}

// --- POST /api/funnel/save ---
//
// Autosave target: the client debounces keystrokes and sends the whole
// accumulated answer map every time. Reaching the last step with all
// required answers present marks the attempt completed.

func (h *FunnelHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveFunnelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	owner, ok := h.resolveOwner(w, r, req.AnonymousID)
	if !ok {
		return
	}

	if req.StepData == nil {
		req.StepData = map[string]string{}
	}
	for stepID := range req.StepData {
		if !funnel.IsKnownStep(stepID) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown step: %s", stepID))
			return
		}
	}
	if req.CurrentStep < 0 || req.CurrentStep > funnel.LastStepIndex() {
		writeError(w, http.StatusBadRequest, "current_step out of range")
		return
	}

	completed := false
	if req.CurrentStep == funnel.LastStepIndex() {
		if missing := funnel.MissingRequired(req.StepData); len(missing) > 0 {
			writeError(w, http.StatusBadRequest, "missing required answers: "+strings.Join(missing, ", "))
			return
		}
		completed = true
	}

	response, err := h.funnels.Upsert(r.Context(), owner, req.StepData, req.CurrentStep, completed)
	if err != nil {
		log.Printf("Error saving funnel response: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to save progress")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// --- GET /api/funnel/latest ---

func (h *FunnelHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if userIDHex := middleware.GetUserID(r.Context()); userIDHex != "" {
		userID, err := bson.ObjectIDFromHex(userIDHex)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user ID")
			return
		}
		response, err := h.funnels.LatestByUser(r.Context(), userID)
		if err != nil {
			log.Printf("Error fetching funnel response: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if response == nil {
			writeError(w, http.StatusNotFound, "no funnel response found")
			return
		}
		writeJSON(w, http.StatusOK, response)
		return
	}

	anonymousID := r.URL.Query().Get("anonymous_id")
	if anonymousID == "" {
		writeError(w, http.StatusBadRequest, "anonymous_id is required")
		return
	}
	response, err := h.funnels.LatestByAnonymous(r.Context(), anonymousID)
	if err != nil {
		log.Printf("Error fetching funnel response: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if response == nil {
		writeError(w, http.StatusNotFound, "no funnel response found")
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// resolveOwner picks the row key: authenticated profile id wins, otherwise
// the browser-local anonymous id.
func (h *FunnelHandler) resolveOwner(w http.ResponseWriter, r *http.Request, anonymousID string) (bson.M, bool) {
	if userIDHex := middleware.GetUserID(r.Context()); userIDHex != "" {
		userID, err := bson.ObjectIDFromHex(userIDHex)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user ID")
			return nil, false
		}
		return bson.M{"user_id": userID}, true
	}
	if anonymousID == "" {
		writeError(w, http.StatusBadRequest, "anonymous_id is required for unauthenticated saves")
		return nil, false
	}
	return bson.M{"anonymous_id": anonymousID, "user_id": nil}, true
}
