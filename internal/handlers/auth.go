package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"brandforge-backend/internal/email"
	"brandforge-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthHandler struct {
	tokens    AuthTokenStore
	profiles  ProfileStore
	funnels   FunnelStore
	mailer    email.Mailer
	jwtSecret string
	baseURL   string
	appURL    string
}

func NewAuthHandler(tokens AuthTokenStore, profiles ProfileStore, funnels FunnelStore, mailer email.Mailer, jwtSecret, baseURL, appURL string) *AuthHandler {
	return &AuthHandler{
		tokens:    tokens,
		profiles:  profiles,
		funnels:   funnels,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		baseURL:   baseURL,
		appURL:    appURL,
	}
}

// --- Request / Response types ---

type RequestLoginRequest struct {
	Email string `json:"email"`
}

type VerifyResponse struct {
	Token string          `json:"token"`
	User  *models.Profile `json:"user"`
}

// --- POST /auth/request ---

func (h *AuthHandler) RequestLogin(w http.ResponseWriter, r *http.Request) {
	var req RequestLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	// Rate limiting: max 5 requests per email in 10 minutes
	count, err := h.tokens.CountRecentByEmail(r.Context(), req.Email, 10*time.Minute)
	if err != nil {
		log.Printf("Error checking rate limit: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if count >= 5 {
		writeError(w, http.StatusTooManyRequests, "too many login requests, please try again later")
		return
	}

	// Generate unique token with 15-minute expiry
	tokenValue := uuid.New().String()
	authToken := &models.AuthToken{
		Email:     req.Email,
		Token:     tokenValue,
		ExpiresAt: time.Now().Add(15 * time.Minute),
		IsUsed:    false,
	}
	if err := h.tokens.Create(r.Context(), authToken); err != nil {
		log.Printf("Error creating auth token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create login token")
		return
	}

	emailLink := fmt.Sprintf("%s/auth/redirect?token=%s", h.baseURL, tokenValue)

	if err := h.mailer.Send(r.Context(), req.Email, "Your BrandForge login link", loginEmailHTML(emailLink)); err != nil {
		log.Printf("Error sending email: %v", err)
		// Don't fail the request — token is created, email sending is best-effort
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "login link generated (email delivery may be delayed)",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "login link sent to your email",
	})
}

// --- GET /auth/verify ---
//
// Exchanges a single-use magic-link token for a JWT. When the browser held
// an anonymous funnel id it is passed along here, and the newest anonymous
// funnel row is claimed for the account.

func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	tokenValue := r.URL.Query().Get("token")
	if tokenValue == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	authToken, err := h.tokens.FindByToken(r.Context(), tokenValue)
	if err != nil {
		log.Printf("Error finding token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if authToken == nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	if authToken.IsExpired() {
		writeError(w, http.StatusUnauthorized, "token has expired")
		return
	}
	if authToken.IsUsed {
		writeError(w, http.StatusUnauthorized, "token has already been used")
		return
	}

	if err := h.tokens.MarkUsed(r.Context(), tokenValue); err != nil {
		log.Printf("Error marking token as used: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	profile, err := h.profiles.FindOrCreate(r.Context(), authToken.Email)
	if err != nil {
		log.Printf("Error finding/creating profile: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if profile.Banned {
		writeError(w, http.StatusForbidden, "account is banned")
		return
	}

	// Claim the anonymous funnel row unless the account already owns one.
	if anonymousID := r.URL.Query().Get("anonymous_id"); anonymousID != "" {
		owned, err := h.funnels.LatestByUser(r.Context(), profile.ID)
		if err != nil {
			log.Printf("Error checking funnel ownership: %v", err)
		} else if owned == nil {
			if claimed, err := h.funnels.ClaimAnonymous(r.Context(), anonymousID, profile.ID); err != nil {
				log.Printf("Error claiming anonymous funnel: %v", err)
			} else if claimed {
				log.Printf("Claimed anonymous funnel %s for profile %s", anonymousID, profile.ID.Hex())
			}
		}
	}

	// Generate JWT with 30-day expiry
	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": profile.ID.Hex(),
		"email":   profile.Email,
		"role":    profile.Role,
		"exp":     time.Now().Add(30 * 24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	})

	tokenString, err := jwtToken.SignedString([]byte(h.jwtSecret))
	if err != nil {
		log.Printf("Error signing JWT: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, VerifyResponse{
		Token: tokenString,
		User:  profile,
	})
}

// --- GET /auth/redirect ---
// Clicked from the email; hands the token to the portal's login callback.

func (h *AuthHandler) RedirectToApp(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("%s/login?token=%s", h.appURL, token), http.StatusFound)
}

func loginEmailHTML(link string) string {
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
			<h2 style="color: #333;">Sign in to BrandForge</h2>
			<p>Click the button below to log in to your client portal:</p>
			<a href="%s" style="display: inline-block; background: #6366f1; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none; font-weight: 600;">
				Open client portal
			</a>
			<p style="color: #888; font-size: 14px; margin-top: 16px;">
				This link expires in 15 minutes and can only be used once.
			</p>
			<p style="color: #aaa; font-size: 12px;">
				If you didn't request this, you can safely ignore this email.
			</p>
		</div>
	`, link)
}
