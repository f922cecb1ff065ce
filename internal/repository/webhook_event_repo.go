package repository

import (
	"context"
	"time"

	"brandforge-backend/internal/database"
	"brandforge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// WebhookEventRepo is the processed-event ledger. The payment processor
// redelivers webhooks, so every mutation consults this before applying.
type WebhookEventRepo struct {
	collection *mongo.Collection
}

func NewWebhookEventRepo() *WebhookEventRepo {
	return &WebhookEventRepo{
		collection: database.GetCollection("webhook_events"),
	}
}

// Seen reports whether the event id has already been processed.
func (r *WebhookEventRepo) Seen(ctx context.Context, eventID string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"event_id": eventID}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// MarkProcessed records the event id after its mutation succeeded. A
// duplicate-key error means a concurrent delivery won the race; that is
// treated as success.
func (r *WebhookEventRepo) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := r.collection.InsertOne(ctx, &models.WebhookEvent{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now(),
	})
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// EnsureIndexes creates necessary indexes for the webhook_events collection
func (r *WebhookEventRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "event_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
