package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

type Profile struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string        `bson:"name" json:"name"`
	Email            string        `bson:"email" json:"email"`
	Role             string        `bson:"role" json:"role"`
	Banned           bool          `bson:"banned" json:"banned"`
	StripeCustomerID string        `bson:"stripe_customer_id,omitempty" json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at" json:"updated_at"`
}

func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func IsValidRole(role string) bool {
	return role == RoleClient || role == RoleAdmin
}
