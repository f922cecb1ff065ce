package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"brandforge-backend/internal/middleware"
	"brandforge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ProfileHandler struct {
	profiles      ProfileStore
	projects      ProjectStore
	subscriptions SubscriptionStore
}

func NewProfileHandler(profiles ProfileStore, projects ProjectStore, subscriptions SubscriptionStore) *ProfileHandler {
	return &ProfileHandler{
		profiles:      profiles,
		projects:      projects,
		subscriptions: subscriptions,
	}
}

// --- GET /api/profiles/me ---

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
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

	projects, err := h.projects.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing projects: %v", err)
		projects = nil
	}
	subs, err := h.subscriptions.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing subscriptions: %v", err)
		subs = nil
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":            profile,
		"project_count":      len(projects),
		"subscription_count": len(subs),
	})
}

// --- GET /api/profiles ---

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		log.Printf("Error listing profiles: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// --- GET /api/profiles/{id} ---

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	profile, err := h.profiles.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("Error finding profile: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type CreateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// --- POST /api/profiles ---

func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if req.Role != "" && !models.IsValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	profile := &models.Profile{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}
	if err := h.profiles.Create(r.Context(), profile); err != nil {
		log.Printf("Error creating profile: %v", err)
		writeError(w, http.StatusConflict, "email already exists")
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

type UpdateProfileRequest struct {
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Banned *bool   `json:"banned"`
}

// --- PUT /api/profiles/{id} ---

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}
		fields["role"] = *req.Role
	}
	if req.Banned != nil {
		fields["banned"] = *req.Banned
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := h.profiles.Update(r.Context(), id, fields); err != nil {
		log.Printf("Error updating profile: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	profile, err := h.profiles.FindByID(r.Context(), id)
	if err != nil || profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// --- DELETE /api/profiles/{id} ---

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	// An admin cannot delete their own account.
	if middleware.GetUserID(r.Context()) == id.Hex() {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := h.profiles.Delete(r.Context(), id); err != nil {
		log.Printf("Error deleting profile: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile deleted"})
}

// callerID reads the authenticated profile id from the request context.
func callerID(w http.ResponseWriter, r *http.Request) (bson.ObjectID, bool) {
	userIDHex := middleware.GetUserID(r.Context())
	if userIDHex == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return bson.ObjectID{}, false
	}
	userID, err := bson.ObjectIDFromHex(userIDHex)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return bson.ObjectID{}, false
	}
	return userID, true
}
