package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// FunnelResponse is one attempt at the lead-intake questionnaire.
// Exactly one of UserID / AnonymousID identifies the owner: authenticated
// visitors are keyed by profile id, everyone else by a browser-generated
// UUID that survives page loads.
type FunnelResponse struct {
	ID          bson.ObjectID     `bson:"_id,omitempty" json:"id"`
	UserID      *bson.ObjectID    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	AnonymousID string            `bson:"anonymous_id,omitempty" json:"anonymous_id,omitempty"`
	StepData    map[string]string `bson:"step_data" json:"step_data"`
	CurrentStep int               `bson:"current_step" json:"current_step"`
	Completed   bool              `bson:"completed" json:"completed"`
	CreatedAt   time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at" json:"updated_at"`
}
