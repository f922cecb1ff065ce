package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"brandforge-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	userEmailKey contextKey = "userEmail"
	userRoleKey  contextKey = "userRole"
)

// ProfileResolver loads the caller's profile so the role column (not the
// token) is the source of truth for authorization.
type ProfileResolver interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Profile, error)
}

// JWTAuth validates the bearer token, loads the profile behind it, and
// rejects banned accounts. Identity lands in the request context.
func JWTAuth(jwtSecret string, profiles ProfileResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, status, errMsg := resolveIdentity(r, jwtSecret, profiles)
			if errMsg != "" {
				writeAuthError(w, status, errMsg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity.userID, identity.email, identity.role)))
		})
	}
}

// OptionalJWTAuth sets identity when a valid token is present and passes
// anonymous requests through untouched. Used by the funnel endpoints, which
// serve both visitors and logged-in clients.
func OptionalJWTAuth(jwtSecret string, profiles ProfileResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if extractToken(r) == "" {
				next.ServeHTTP(w, r)
				return
			}
			identity, status, errMsg := resolveIdentity(r, jwtSecret, profiles)
			if errMsg != "" {
				writeAuthError(w, status, errMsg)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity.userID, identity.email, identity.role)))
		})
	}
}

// RequireRole is the single authorization policy gating privileged route
// groups. It assumes JWTAuth already ran.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUserRole(r.Context()) != role {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type identity struct {
	userID string
	email  string
	role   string
}

func resolveIdentity(r *http.Request, jwtSecret string, profiles ProfileResolver) (identity, int, string) {
	tokenString := extractToken(r)
	if tokenString == "" {
		return identity{}, http.StatusUnauthorized, "authentication required"
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return identity{}, http.StatusUnauthorized, "invalid token"
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity{}, http.StatusUnauthorized, "invalid token claims"
	}
	userIDHex, _ := claims["user_id"].(string)
	userID, err := bson.ObjectIDFromHex(userIDHex)
	if err != nil {
		return identity{}, http.StatusUnauthorized, "invalid token claims"
	}

	profile, err := profiles.FindByID(r.Context(), userID)
	if err != nil {
		return identity{}, http.StatusInternalServerError, "internal server error"
	}
	if profile == nil {
		return identity{}, http.StatusUnauthorized, "account no longer exists"
	}
	if profile.Banned {
		return identity{}, http.StatusForbidden, "account is banned"
	}

	return identity{
		userID: profile.ID.Hex(),
		email:  profile.Email,
		role:   profile.Role,
	}, 0, ""
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// WithIdentity stores the caller's identity in the context. Exposed so
// handler tests can simulate authenticated requests.
func WithIdentity(ctx context.Context, userID, email, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userEmailKey, email)
	ctx = context.WithValue(ctx, userRoleKey, role)
	return ctx
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}

// GetUserID returns the authenticated profile id hex, or "" for anonymous.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func GetUserEmail(ctx context.Context) string {
	email, _ := ctx.Value(userEmailKey).(string)
	return email
}

func GetUserRole(ctx context.Context) string {
	role, _ := ctx.Value(userRoleKey).(string)
	return role
}
