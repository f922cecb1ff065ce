package billing

import (
	"context"
	"fmt"
	"time"
)

// MockGateway implements Gateway in memory. Used in tests and when no
// processor key is configured in development.
type MockGateway struct {
	Subscriptions map[string]*SubscriptionInfo
	customerSeq   int
}

func NewMockGateway() *MockGateway {
	return &MockGateway{Subscriptions: make(map[string]*SubscriptionInfo)}
}

func (m *MockGateway) EnsureCustomer(ctx context.Context, email, name string) (string, error) {
	m.customerSeq++
	return fmt.Sprintf("cus_mock_%d", m.customerSeq), nil
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	return "https://checkout.example.com/session/mock", nil
}

func (m *MockGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	return "https://billing.example.com/portal/mock", nil
}

func (m *MockGateway) GetSubscription(ctx context.Context, id string) (*SubscriptionInfo, error) {
	if info, ok := m.Subscriptions[id]; ok {
		return info, nil
	}
	return &SubscriptionInfo{
		ID:               id,
		Status:           "active",
		CurrentPeriodEnd: time.Now().Add(30 * 24 * time.Hour),
	}, nil
}
