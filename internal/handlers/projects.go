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

type ProjectHandler struct {
	projects ProjectStore
}

func NewProjectHandler(projects ProjectStore) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// --- GET /api/projects ---
// Admins see every project; clients only their own.

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserRole(r.Context()) == models.RoleAdmin {
		projects, err := h.projects.List(r.Context())
		if err != nil {
			log.Printf("Error listing projects: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, projects)
		return
	}

	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	projects, err := h.projects.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing projects: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// --- GET /api/projects/{id} ---

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	project, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("Error finding project: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	// Clients can only read their own projects.
	if middleware.GetUserRole(r.Context()) != models.RoleAdmin &&
		project.UserID.Hex() != middleware.GetUserID(r.Context()) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

type CreateProjectRequest struct {
	UserID            string     `json:"user_id"`
	FunnelResponseID  string     `json:"funnel_response_id"`
	PlanName          string     `json:"plan_name"`
	Status            string     `json:"status"`
	Summary           string     `json:"summary"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
}

// --- POST /api/projects ---

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := bson.ObjectIDFromHex(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "valid user_id is required")
		return
	}
	if req.Status != "" && !models.IsValidProjectStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	project := &models.Project{
		UserID:            userID,
		PlanName:          req.PlanName,
		Status:            req.Status,
		Summary:           req.Summary,
		EstimatedDelivery: req.EstimatedDelivery,
	}
	if req.FunnelResponseID != "" {
		funnelID, err := bson.ObjectIDFromHex(req.FunnelResponseID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid funnel_response_id")
			return
		}
		project.FunnelResponseID = &funnelID
	}

	if err := h.projects.Create(r.Context(), project); err != nil {
		log.Printf("Error creating project: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

type UpdateProjectRequest struct {
	PlanName          *string    `json:"plan_name"`
	Status            *string    `json:"status"`
	Summary           *string    `json:"summary"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
}

// --- PUT /api/projects/{id} ---

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := bson.M{}
	if req.PlanName != nil {
		fields["plan_name"] = *req.PlanName
	}
	if req.Status != nil {
		if !models.IsValidProjectStatus(*req.Status) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		fields["status"] = *req.Status
	}
	if req.Summary != nil {
		fields["summary"] = *req.Summary
	}
	if req.EstimatedDelivery != nil {
		fields["estimated_delivery"] = *req.EstimatedDelivery
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := h.projects.Update(r.Context(), id, fields); err != nil {
		log.Printf("Error updating project: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update project")
		return
	}

	project, err := h.projects.FindByID(r.Context(), id)
	if err != nil || project == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// --- DELETE /api/projects/{id} ---

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.projects.Delete(r.Context(), id); err != nil {
		log.Printf("Error deleting project: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "project deleted"})
}
