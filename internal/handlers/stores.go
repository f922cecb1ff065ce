package handlers

import (
	"context"
	"time"

	"brandforge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Store interfaces for the data operations each handler needs. The
// repository package provides the Mongo-backed implementations; tests use
// in-memory mocks.

type AuthTokenStore interface {
	Create(ctx context.Context, token *models.AuthToken) error
	FindByToken(ctx context.Context, token string) (*models.AuthToken, error)
	MarkUsed(ctx context.Context, token string) error
	CountRecentByEmail(ctx context.Context, email string, duration time.Duration) (int64, error)
}

type ProfileStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	FindOrCreate(ctx context.Context, email string) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) error
	List(ctx context.Context) ([]*models.Profile, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) error
	SetStripeCustomerID(ctx context.Context, id bson.ObjectID, customerID string) error
	Delete(ctx context.Context, id bson.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type FunnelStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.FunnelResponse, error)
	LatestByUser(ctx context.Context, userID bson.ObjectID) (*models.FunnelResponse, error)
	LatestByAnonymous(ctx context.Context, anonymousID string) (*models.FunnelResponse, error)
	Upsert(ctx context.Context, owner bson.M, stepData map[string]string, currentStep int, completed bool) (*models.FunnelResponse, error)
	ClaimAnonymous(ctx context.Context, anonymousID string, userID bson.ObjectID) (bool, error)
	CountCompleted(ctx context.Context) (int64, error)
}

type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	ListByUser(ctx context.Context, userID bson.ObjectID) ([]*models.Project, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id bson.ObjectID) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type SubscriptionStore interface {
	Create(ctx context.Context, sub *models.Subscription) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Subscription, error)
	FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	List(ctx context.Context) ([]*models.Subscription, error)
	ListByUser(ctx context.Context, userID bson.ObjectID) ([]*models.Subscription, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) error
	UpdateByStripeID(ctx context.Context, stripeSubscriptionID string, fields bson.M) (bool, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	CountActive(ctx context.Context) (int64, error)
	SumActiveAmount(ctx context.Context) (int64, error)
}

type DocumentStore interface {
	Create(ctx context.Context, doc *models.InternalDocument) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.InternalDocument, error)
	List(ctx context.Context) ([]*models.InternalDocument, error)
	ListByProject(ctx context.Context, projectID bson.ObjectID) ([]*models.InternalDocument, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Task, error)
	List(ctx context.Context) ([]*models.Task, error)
	ListByProject(ctx context.Context, projectID bson.ObjectID) ([]*models.Task, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) error
	Delete(ctx context.Context, id bson.ObjectID) error
}

type SettingsStore interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, values map[string]string) (*models.Settings, error)
}

type WebhookLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string) error
}

type ContactStore interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
}
