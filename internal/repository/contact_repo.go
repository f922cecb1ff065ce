package repository

import (
	"context"
	"time"

	"brandforge-backend/internal/database"
	"brandforge-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type ContactRepo struct {
	collection *mongo.Collection
}

func NewContactRepo() *ContactRepo {
	return &ContactRepo{
		collection: database.GetCollection("contact_messages"),
	}
}

func (r *ContactRepo) Create(ctx context.Context, msg *models.ContactMessage) error {
	msg.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	msg.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// EnsureIndexes creates necessary indexes for the contact_messages collection
func (r *ContactRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}
