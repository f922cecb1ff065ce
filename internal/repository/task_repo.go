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

type TaskRepo struct {
	collection *mongo.Collection
}

func NewTaskRepo() *TaskRepo {
	return &TaskRepo{
		collection: database.GetCollection("tasks"),
	}
}

func (r *TaskRepo) Create(ctx context.Context, task *models.Task) error {
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	result, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		return err
	}
	task.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *TaskRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepo) List(ctx context.Context) ([]*models.Task, error) {
	return r.list(ctx, bson.M{})
}

func (r *TaskRepo) ListByProject(ctx context.Context, projectID bson.ObjectID) ([]*models.Task, error) {
	return r.list(ctx, bson.M{"project_id": projectID})
}

func (r *TaskRepo) list(ctx context.Context, filter bson.M) ([]*models.Task, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []*models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepo) Update(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return err
}

func (r *TaskRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// EnsureIndexes creates necessary indexes for the tasks collection
func (r *TaskRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
