package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// WebhookEvent records a processed payment-processor event id. Stripe
// redelivers webhooks, so every mutation is guarded by this ledger.
type WebhookEvent struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID     string        `bson:"event_id" json:"event_id"`
	EventType   string        `bson:"event_type" json:"event_type"`
	ProcessedAt time.Time     `bson:"processed_at" json:"processed_at"`
}
