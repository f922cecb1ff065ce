package billing

import (
	"context"
	"time"
)

// CheckoutParams describes a hosted checkout session to create.
type CheckoutParams struct {
	CustomerID    string
	CustomerEmail string
	PriceID       string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// SubscriptionInfo is the slice of the processor's subscription object the
// sync layer cares about.
type SubscriptionInfo struct {
	ID               string
	PriceID          string
	Status           string
	Amount           int64
	CurrentPeriodEnd time.Time
}

// Gateway abstracts the payment processor so handlers can be exercised
// without network calls. The real implementation talks to Stripe.
type Gateway interface {
	EnsureCustomer(ctx context.Context, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	GetSubscription(ctx context.Context, id string) (*SubscriptionInfo, error)
}
