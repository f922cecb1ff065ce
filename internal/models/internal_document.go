package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type InternalDocument struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID    bson.ObjectID `bson:"project_id" json:"project_id"`
	DocumentType string        `bson:"document_type" json:"document_type"`
	Version      int           `bson:"version" json:"version"`
	Content      string        `bson:"content" json:"content"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}
