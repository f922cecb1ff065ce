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

type DocumentRepo struct {
	collection *mongo.Collection
}

func NewDocumentRepo() *DocumentRepo {
	return &DocumentRepo{
		collection: database.GetCollection("internal_documents"),
	}
}

func (r *DocumentRepo) Create(ctx context.Context, doc *models.InternalDocument) error {
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()
	if doc.Version == 0 {
		doc.Version = 1
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	doc.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *DocumentRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.InternalDocument, error) {
	var doc models.InternalDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) List(ctx context.Context) ([]*models.InternalDocument, error) {
	return r.list(ctx, bson.M{})
}

func (r *DocumentRepo) ListByProject(ctx context.Context, projectID bson.ObjectID) ([]*models.InternalDocument, error) {
	return r.list(ctx, bson.M{"project_id": projectID})
}

func (r *DocumentRepo) list(ctx context.Context, filter bson.M) ([]*models.InternalDocument, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := []*models.InternalDocument{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Update bumps the version on every content change so the back-office can
// tell which revision it is looking at.
func (r *DocumentRepo) Update(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": fields,
		"$inc": bson.M{"version": 1},
	})
	return err
}

func (r *DocumentRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// EnsureIndexes creates necessary indexes for the internal_documents collection
func (r *DocumentRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
