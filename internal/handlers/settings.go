package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

type SettingsHandler struct {
	settings SettingsStore
}

func NewSettingsHandler(settings SettingsStore) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// --- GET /api/settings ---

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		log.Printf("Error loading settings: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type UpdateSettingsRequest struct {
	Values map[string]string `json:"values"`
}

// --- PUT /api/settings ---

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Values == nil {
		writeError(w, http.StatusBadRequest, "values is required")
		return
	}

	settings, err := h.settings.Update(r.Context(), req.Values)
	if err != nil {
		log.Printf("Error updating settings: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
