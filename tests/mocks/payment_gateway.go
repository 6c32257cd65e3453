package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	models "github.com/veligo/charterdesk/internal"
)

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, amount int64, label string, metadata map[string]string) (*models.CheckoutSession, error) {
	args := m.Called(ctx, amount, label, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutSession), args.Error(1)
}

func (m *MockPaymentGateway) RetrieveSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutSession), args.Error(1)
}

// RecordingNotifier captures published events so tests can assert on what
// was (or was not) emitted without any mock expectation noise.
type RecordingNotifier struct {
	mu     sync.Mutex
	Events []models.ReservationEvent
}

func (n *RecordingNotifier) Publish(_ context.Context, event models.ReservationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Events = append(n.Events, event)
}

func (n *RecordingNotifier) Kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]string, len(n.Events))
	for i, e := range n.Events {
		kinds[i] = e.Kind
	}
	return kinds
}
