package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	TaskStatusTodo  = "todo"
	TaskStatusDoing = "doing"
	TaskStatusDone  = "done"
)

type Task struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID  bson.ObjectID `bson:"project_id" json:"project_id"`
	Title      string        `bson:"title" json:"title"`
	Status     string        `bson:"status" json:"status"`
	AssignedTo string        `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `bson:"updated_at" json:"updated_at"`
}

func IsValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusDone:
		return true
	}
	return false
}
