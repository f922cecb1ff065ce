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

type SubscriptionRepo struct {
	collection *mongo.Collection
}

func NewSubscriptionRepo() *SubscriptionRepo {
	return &SubscriptionRepo{
		collection: database.GetCollection("subscriptions"),
	}
}

func (r *SubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = time.Now()
	if sub.Status == "" {
		sub.Status = models.SubscriptionStatusPending
	}
	result, err := r.collection.InsertOne(ctx, sub)
	if err != nil {
		return err
	}
	sub.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *SubscriptionRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepo) FindByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.collection.FindOne(ctx, bson.M{"stripe_subscription_id": stripeSubscriptionID}).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepo) List(ctx context.Context) ([]*models.Subscription, error) {
	return r.list(ctx, bson.M{})
}

func (r *SubscriptionRepo) ListByUser(ctx context.Context, userID bson.ObjectID) ([]*models.Subscription, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *SubscriptionRepo) list(ctx context.Context, filter bson.M) ([]*models.Subscription, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	subs := []*models.Subscription{}
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *SubscriptionRepo) Update(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return err
}

// UpdateByStripeID overwrites the mirrored fields for the row tracking the
// given processor subscription. Returns false when no row matches.
func (r *SubscriptionRepo) UpdateByStripeID(ctx context.Context, stripeSubscriptionID string, fields bson.M) (bool, error) {
	fields["updated_at"] = time.Now()
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"stripe_subscription_id": stripeSubscriptionID},
		bson.M{"$set": fields},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *SubscriptionRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *SubscriptionRepo) CountActive(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": models.SubscriptionStatusActive})
}

// SumActiveAmount totals the monthly amount (cents) of active subscriptions.
func (r *SubscriptionRepo) SumActiveAmount(ctx context.Context) (int64, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.SubscriptionStatusActive}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// EnsureIndexes creates necessary indexes for the subscriptions collection
func (r *SubscriptionRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stripe_subscription_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
