package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"brandforge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type DocumentHandler struct {
	documents DocumentStore
}

func NewDocumentHandler(documents DocumentStore) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// --- GET /api/internal-documents?project_id= ---

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	if projectIDHex := r.URL.Query().Get("project_id"); projectIDHex != "" {
		projectID, err := bson.ObjectIDFromHex(projectIDHex)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid project_id")
			return
		}
		docs, err := h.documents.ListByProject(r.Context(), projectID)
		if err != nil {
			log.Printf("Error listing documents: %v", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, docs)
		return
	}

	docs, err := h.documents.List(r.Context())
	if err != nil {
		log.Printf("Error listing documents: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// --- GET /api/internal-documents/{id} ---

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	doc, err := h.documents.FindByID(r.Context(), id)
	if err != nil {
		log.Printf("Error finding document: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type CreateDocumentRequest struct {
	ProjectID    string `json:"project_id"`
	DocumentType string `json:"document_type"`
	Content      string `json:"content"`
}

// --- POST /api/internal-documents ---

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	projectID, err := bson.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "valid project_id is required")
		return
	}
	if req.DocumentType == "" {
		writeError(w, http.StatusBadRequest, "document_type is required")
		return
	}

	doc := &models.InternalDocument{
		ProjectID:    projectID,
		DocumentType: req.DocumentType,
		Content:      req.Content,
	}
	if err := h.documents.Create(r.Context(), doc); err != nil {
		log.Printf("Error creating document: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create document")
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

type UpdateDocumentRequest struct {
	DocumentType *string `json:"document_type"`
	Content      *string `json:"content"`
}

// --- PUT /api/internal-documents/{id} ---

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := bson.M{}
	if req.DocumentType != nil {
		fields["document_type"] = *req.DocumentType
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if len(fields) == 0 {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := h.documents.Update(r.Context(), id, fields); err != nil {
		log.Printf("Error updating document: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to update document")
		return
	}

	doc, err := h.documents.FindByID(r.Context(), id)
	if err != nil || doc == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// --- DELETE /api/internal-documents/{id} ---

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.documents.Delete(r.Context(), id); err != nil {
		log.Printf("Error deleting document: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}
