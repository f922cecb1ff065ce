package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	ProjectStatusOnboarding = "onboarding"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusReview     = "review"
	ProjectStatusCompleted  = "completed"
)

type Project struct {
	ID                bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID            bson.ObjectID  `bson:"user_id" json:"user_id"`
	FunnelResponseID  *bson.ObjectID `bson:"funnel_response_id,omitempty" json:"funnel_response_id,omitempty"`
	PlanName          string         `bson:"plan_name" json:"plan_name"`
	Status            string         `bson:"status" json:"status"`
	Summary           string         `bson:"summary" json:"summary"`
	EstimatedDelivery *time.Time     `bson:"estimated_delivery,omitempty" json:"estimated_delivery,omitempty"`
	CreatedAt         time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `bson:"updated_at" json:"updated_at"`
}

func IsValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusOnboarding, ProjectStatusInProgress, ProjectStatusReview, ProjectStatusCompleted:
		return true
	}
	return false
}
