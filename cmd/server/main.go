package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"brandforge-backend/internal/billing"
	"brandforge-backend/internal/database"
	"brandforge-backend/internal/email"
	"brandforge-backend/internal/handlers"
	customMiddleware "brandforge-backend/internal/middleware"
	"brandforge-backend/internal/models"
	"brandforge-backend/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env (ignore error in production — env vars set directly)
	_ = godotenv.Load()

	// Required env vars
	mongoURI := getEnv("MONGODB_URI", "")
	dbName := getEnv("DB_NAME", "brandforge")
	jwtSecret := getEnv("JWT_SECRET", "")
	port := getEnv("PORT", "8080")
	baseURL := getEnv("BASE_URL", "http://localhost:"+port)
	appURL := getEnv("APP_URL", "http://localhost:3000")
	contactInbox := getEnv("CONTACT_INBOX", "hello@brandforge.agency")

	if mongoURI == "" {
		log.Fatal("MONGODB_URI is required")
	}
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Connect to MongoDB
	if err := database.Connect(mongoURI, dbName); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	// Initialize repositories
	profileRepo := repository.NewProfileRepo()
	tokenRepo := repository.NewAuthTokenRepo()
	funnelRepo := repository.NewFunnelRepo()
	projectRepo := repository.NewProjectRepo()
	subscriptionRepo := repository.NewSubscriptionRepo()
	documentRepo := repository.NewDocumentRepo()
	taskRepo := repository.NewTaskRepo()
	settingsRepo := repository.NewSettingsRepo()
	webhookEventRepo := repository.NewWebhookEventRepo()
	contactRepo := repository.NewContactRepo()

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexed := map[string]interface{ EnsureIndexes(context.Context) error }{
		"profiles":       profileRepo,
		"auth_tokens":    tokenRepo,
		"funnels":        funnelRepo,
		"projects":       projectRepo,
		"subscriptions":  subscriptionRepo,
		"documents":      documentRepo,
		"tasks":          taskRepo,
		"webhook_events": webhookEventRepo,
		"contacts":       contactRepo,
	}
	for name, repo := range indexed {
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Printf("Warning: failed to create %s indexes: %v", name, err)
		}
	}

	// Mailer: Resend in production, log-only mock without an API key
	var mailer email.Mailer
	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		mailer = email.NewResendMailer(apiKey, getEnv("FROM_EMAIL", "no-reply@brandforge.agency"))
	} else {
		log.Println("RESEND_API_KEY not set, using mock mailer")
		mailer = email.NewMockMailer()
	}

	// Payment gateway: Stripe in production, mock without a secret key
	var gateway billing.Gateway
	if stripeKey := os.Getenv("STRIPE_SECRET_KEY"); stripeKey != "" {
		gateway = billing.NewStripeGateway(stripeKey)
	} else {
		log.Println("STRIPE_SECRET_KEY not set, using mock payment gateway")
		gateway = billing.NewMockGateway()
	}
	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")

	catalog := billing.NewCatalog(billing.DefaultPlans(
		getEnv("STRIPE_PRICE_STARTER", "price_starter"),
		getEnv("STRIPE_PRICE_GROWTH", "price_growth"),
		getEnv("STRIPE_PRICE_SCALE", "price_scale"),
	))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(tokenRepo, profileRepo, funnelRepo, mailer, jwtSecret, baseURL, appURL)
	funnelHandler := handlers.NewFunnelHandler(funnelRepo)
	profileHandler := handlers.NewProfileHandler(profileRepo, projectRepo, subscriptionRepo)
	projectHandler := handlers.NewProjectHandler(projectRepo)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionRepo)
	documentHandler := handlers.NewDocumentHandler(documentRepo)
	taskHandler := handlers.NewTaskHandler(taskRepo)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo)
	analyticsHandler := handlers.NewAnalyticsHandler(profileRepo, projectRepo, subscriptionRepo, funnelRepo)
	contactHandler := handlers.NewContactHandler(contactRepo, mailer, contactInbox)
	stripeHandler := handlers.NewStripeHandler(gateway, catalog, profileRepo, subscriptionRepo, appURL)
	webhookHandler := handlers.NewWebhookHandler(webhookEventRepo, subscriptionRepo, projectRepo, funnelRepo, gateway, catalog, webhookSecret)

	// Setup chi router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"brandforge-backend"}`))
	})

	// Public routes (no auth required)
	r.Post("/auth/request", authHandler.RequestLogin)
	r.Get("/auth/verify", authHandler.VerifyToken)
	r.Get("/auth/redirect", authHandler.RedirectToApp)
	r.Post("/api/contact", contactHandler.Submit)
	r.Get("/api/plans", stripeHandler.Plans)
	r.Get("/api/funnel/steps", funnelHandler.GetSteps)
	r.Post("/api/stripe/webhook", webhookHandler.HandleEvent)

	// Funnel routes: work for visitors and logged-in clients alike
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.OptionalJWTAuth(jwtSecret, profileRepo))

		r.Post("/api/funnel/save", funnelHandler.Save)
		r.Get("/api/funnel/latest", funnelHandler.Latest)
	})

	// Client routes (JWT required)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.JWTAuth(jwtSecret, profileRepo))

		r.Get("/api/profiles/me", profileHandler.Me)
		r.Get("/api/projects", projectHandler.List)
		r.Get("/api/projects/{id}", projectHandler.Get)
		r.Get("/api/subscriptions", subscriptionHandler.List)
		r.Get("/api/subscriptions/{id}", subscriptionHandler.Get)
		r.Post("/api/stripe/checkout", stripeHandler.CreateCheckout)
		r.Post("/api/stripe/portal", stripeHandler.CreatePortal)
	})

	// Admin routes (JWT + role policy)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.JWTAuth(jwtSecret, profileRepo))
		r.Use(customMiddleware.RequireRole(models.RoleAdmin))

		r.Get("/api/profiles", profileHandler.List)
		r.Post("/api/profiles", profileHandler.Create)
		r.Get("/api/profiles/{id}", profileHandler.Get)
		r.Put("/api/profiles/{id}", profileHandler.Update)
		r.Delete("/api/profiles/{id}", profileHandler.Delete)

		r.Post("/api/projects", projectHandler.Create)
		r.Put("/api/projects/{id}", projectHandler.Update)
		r.Delete("/api/projects/{id}", projectHandler.Delete)

		r.Post("/api/subscriptions", subscriptionHandler.Create)
		r.Put("/api/subscriptions/{id}", subscriptionHandler.Update)
		r.Delete("/api/subscriptions/{id}", subscriptionHandler.Delete)

		r.Get("/api/internal-documents", documentHandler.List)
		r.Post("/api/internal-documents", documentHandler.Create)
		r.Get("/api/internal-documents/{id}", documentHandler.Get)
		r.Put("/api/internal-documents/{id}", documentHandler.Update)
		r.Delete("/api/internal-documents/{id}", documentHandler.Delete)

		r.Get("/api/tasks", taskHandler.List)
		r.Post("/api/tasks", taskHandler.Create)
		r.Put("/api/tasks/{id}", taskHandler.Update)
		r.Delete("/api/tasks/{id}", taskHandler.Delete)

		r.Get("/api/settings", settingsHandler.Get)
		r.Put("/api/settings", settingsHandler.Update)
		r.Get("/api/analytics/summary", analyticsHandler.Summary)
	})

	// Start server
	log.Printf("BrandForge backend starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
