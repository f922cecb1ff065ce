package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	SubscriptionStatusPending  = "pending"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Subscription mirrors the payment processor's subscription object.
// Stripe owns the billing state machine; these rows are a local read model
// kept in sync by the webhook handler.
type Subscription struct {
	ID                   bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID               bson.ObjectID  `bson:"user_id" json:"user_id"`
	FunnelResponseID     *bson.ObjectID `bson:"funnel_response_id,omitempty" json:"funnel_response_id,omitempty"`
	StripeSubscriptionID string         `bson:"stripe_subscription_id,omitempty" json:"stripe_subscription_id,omitempty"`
	PriceID              string         `bson:"price_id" json:"price_id"`
	PlanName             string         `bson:"plan_name" json:"plan_name"`
	Amount               int64          `bson:"amount" json:"amount"` // cents
	Status               string         `bson:"status" json:"status"`
	NextDueDate          *time.Time     `bson:"next_due_date,omitempty" json:"next_due_date,omitempty"`
	CreatedAt            time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `bson:"updated_at" json:"updated_at"`
}
