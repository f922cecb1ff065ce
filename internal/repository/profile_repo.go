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

type ProfileRepo struct {
	collection *mongo.Collection
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{
		collection: database.GetCollection("profiles"),
	}
}

func (r *ProfileRepo) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepo) Create(ctx context.Context, profile *models.Profile) error {
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()
	if profile.Role == "" {
		profile.Role = models.RoleClient
	}
	result, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return err
	}
	profile.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *ProfileRepo) FindOrCreate(ctx context.Context, email string) (*models.Profile, error) {
	profile, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	newProfile := &models.Profile{
		Email: email,
		Role:  models.RoleClient,
	}
	if err := r.Create(ctx, newProfile); err != nil {
		return nil, err
	}
	return newProfile, nil
}

func (r *ProfileRepo) List(ctx context.Context) ([]*models.Profile, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []*models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *ProfileRepo) Update(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return err
}

func (r *ProfileRepo) SetStripeCustomerID(ctx context.Context, id bson.ObjectID, customerID string) error {
	return r.Update(ctx, id, bson.M{"stripe_customer_id": customerID})
}

func (r *ProfileRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *ProfileRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// EnsureIndexes creates necessary indexes for the profiles collection
func (r *ProfileRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
