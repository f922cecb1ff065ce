package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"

	"brandforge-backend/internal/email"
	"brandforge-backend/internal/models"
)

type ContactHandler struct {
	contacts     ContactStore
	mailer       email.Mailer
	contactInbox string
}

func NewContactHandler(contacts ContactStore, mailer email.Mailer, contactInbox string) *ContactHandler {
	return &ContactHandler{
		contacts:     contacts,
		mailer:       mailer,
		contactInbox: contactInbox,
	}
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// --- POST /api/contact ---

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "email and message are required")
		return
	}

	msg := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := h.contacts.Create(r.Context(), msg); err != nil {
		log.Printf("Error saving contact message: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to submit message")
		return
	}

	// Forward to the agency inbox in a background goroutine (non-blocking)
	go func() {
		subject := fmt.Sprintf("New contact form message from %s", req.Email)
		body := fmt.Sprintf(
			"<p><strong>Name:</strong> %s</p><p><strong>Email:</strong> %s</p><p>%s</p>",
			html.EscapeString(req.Name), html.EscapeString(req.Email), html.EscapeString(req.Message),
		)
		if err := h.mailer.Send(context.Background(), h.contactInbox, subject, body); err != nil {
			log.Printf("Error forwarding contact message: %v", err)
		}
	}()

	writeJSON(w, http.StatusCreated, map[string]string{"message": "thanks, we'll be in touch"})
}
