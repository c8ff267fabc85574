package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type mockCart struct {
	mu        sync.Mutex
	items     domain.Cart
	discarded int
}

func (m *mockCart) Snapshot() domain.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.Clone()
}

func (m *mockCart) Discard(_ context.Context, ordered domain.Cart) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = m.items[min(len(ordered), len(m.items)):].Clone()
	m.discarded++
}

type mockSession struct {
	user domain.UserSession
}

func (m mockSession) CheckoutUser() (domain.UserSession, bool) {
	if !m.user.IsComplete() {
		return domain.UserSession{}, false
	}
	return m.user, true
}

type mockPlacer struct {
	mu      sync.Mutex
	calls   int
	keys    []string
	last    domain.OrderRequest
	id      string
	err     error
	started chan struct{} // closed on first call when set
	release chan struct{} // blocks the call until closed when set
}

func (m *mockPlacer) PlaceOrder(ctx context.Context, key string, order domain.OrderRequest) (string, error) {
	m.mu.Lock()
	m.calls++
	m.keys = append(m.keys, key)
	m.last = order
	first := m.calls == 1
	m.mu.Unlock()

	if first && m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		<-m.release
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.id, m.err
}

func (m *mockPlacer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockReceipts struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (m *mockReceipts) Append(_ context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	return nil
}
