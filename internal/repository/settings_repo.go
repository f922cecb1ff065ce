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

type SettingsRepo struct {
	collection *mongo.Collection
}

func NewSettingsRepo() *SettingsRepo {
	return &SettingsRepo{
		collection: database.GetCollection("settings"),
	}
}

// Get returns the site settings document, creating an empty one on first
// read so callers never see a nil document.
func (r *SettingsRepo) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings)
	if err == nil {
		return &settings, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	settings = models.Settings{
		Values:    map[string]string{},
		UpdatedAt: time.Now(),
	}
	result, insertErr := r.collection.InsertOne(ctx, &settings)
	if insertErr != nil {
		return nil, insertErr
	}
	settings.ID = result.InsertedID.(bson.ObjectID)
	return &settings, nil
}

// Update replaces the settings values wholesale.
func (r *SettingsRepo) Update(ctx context.Context, values map[string]string) (*models.Settings, error) {
	update := bson.M{
		"$set": bson.M{
			"values":     values,
			"updated_at": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var settings models.Settings
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}
