package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Settings is the single site-settings document. Values are free-form
// key-value pairs edited from the admin back-office.
type Settings struct {
	ID        bson.ObjectID     `bson:"_id,omitempty" json:"id"`
	Values    map[string]string `bson:"values" json:"values"`
	UpdatedAt time.Time         `bson:"updated_at" json:"updated_at"`
}
