package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"brandforge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type TaskHandler struct {
	tasks TaskStore
}

func NewTaskHandler(tasks TaskStore) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// --- GET /api/tasks?project_id= ---

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	if projectIDHex := r.URL.Query().Get("project_id"); projectIDHex != "" {
		projectID, err := bson.ObjectIDFromHex(projectIDHex)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid project_id")
			return
		}
		tasks, err := h.tasks.ListByProject(r.Context(), projectID)
		if err != nil {
			log.Printf("Error listing tasks: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, tasks)
		return
	}

	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		log.Printf("Error listing tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

type CreateTaskRequest struct {
	ProjectID  string `json:"project_id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
}

// --- POST /api/tasks ---

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	projectID, err := bson.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "valid project_id is required")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Status != "" && !models.IsValidTaskStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	task := &models.Task{
		ProjectID:  projectID,
		Title:      req.Title,
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
	}
	if err := h.tasks.Create(r.Context(), task); err != nil {
		log.Printf("Error creating task: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

type UpdateTaskRequest struct {
	Title      *string `json:"title"`
	Status     *string `json:"status"`
	AssignedTo *string `json:"assigned_to"`
}

// --- PUT /api/tasks/{id} ---

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := bson.M{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Status != nil {
		if !models.IsValidTaskStatus(*req.Status) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		fields["status"] = *req.Status
	}
	if req.AssignedTo != nil {
		fields["assigned_to"] = *req.AssignedTo
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := h.tasks.Update(r.Context(), id, fields); err != nil {
		log.Printf("Error updating task: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	task, err := h.tasks.FindByID(r.Context(), id)
	if err != nil || task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// --- DELETE /api/tasks/{id} ---

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), id); err != nil {
		log.Printf("Error deleting task: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}
