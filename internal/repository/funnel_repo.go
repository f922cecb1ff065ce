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

type FunnelRepo struct {
	collection *mongo.Collection
}

func NewFunnelRepo() *FunnelRepo {
	return &FunnelRepo{
		collection: database.GetCollection("funnel_responses"),
	}
}

func (r *FunnelRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.FunnelResponse, error) {
	var response models.FunnelResponse
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&response)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &response, nil
}

// LatestByUser returns the newest funnel row owned by the user.
func (r *FunnelRepo) LatestByUser(ctx context.Context, userID bson.ObjectID) (*models.FunnelResponse, error) {
	return r.latest(ctx, bson.M{"user_id": userID})
}

// LatestByAnonymous returns the newest funnel row for a browser-local id.
func (r *FunnelRepo) LatestByAnonymous(ctx context.Context, anonymousID string) (*models.FunnelResponse, error) {
	return r.latest(ctx, bson.M{"anonymous_id": anonymousID, "user_id": nil})
}

func (r *FunnelRepo) latest(ctx context.Context, filter bson.M) (*models.FunnelResponse, error) {
	var response models.FunnelResponse
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	err := r.collection.FindOne(ctx, filter, opts).Decode(&response)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &response, nil
}

// Upsert saves the accumulated answers for the owner, replacing the whole
// step_data map. Autosave calls this on every debounced change.
func (r *FunnelRepo) Upsert(ctx context.Context, owner bson.M, stepData map[string]string, currentStep int, completed bool) (*models.FunnelResponse, error) {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"step_data":    stepData,
			"current_step": currentStep,
			"completed":    completed,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	for k, v := range owner {
		update["$setOnInsert"].(bson.M)[k] = v
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var response models.FunnelResponse
	if err := r.collection.FindOneAndUpdate(ctx, owner, update, opts).Decode(&response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ClaimAnonymous assigns ownership of the newest anonymous row to the user.
// Rows already claimed by someone else are left alone.
func (r *FunnelRepo) ClaimAnonymous(ctx context.Context, anonymousID string, userID bson.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"anonymous_id": anonymousID, "user_id": nil},
		bson.M{"$set": bson.M{"user_id": userID, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

func (r *FunnelRepo) CountCompleted(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"completed": true})
}

// EnsureIndexes creates necessary indexes for the funnel_responses collection
func (r *FunnelRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "anonymous_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
