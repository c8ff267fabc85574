package stock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	availability domain.Availability
	err          error
	calls        atomic.Int32
	delay        time.Duration
	lastQty      atomic.Int32
}

func (m *mockChecker) CheckStock(_ context.Context, _ int64, quantity int) (domain.Availability, error) {
	m.calls.Add(1)
	m.lastQty.Store(int32(quantity))
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return domain.Availability{}, m.err
	}
	return m.availability, nil
}

// gatedChecker holds every call until release is closed and honours ctx meanwhile.
type gatedChecker struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (g *gatedChecker) CheckStock(ctx context.Context, _ int64, _ int) (domain.Availability, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	select {
	case <-g.release:
		return domain.Availability{Status: domain.StockOK}, nil
	case <-ctx.Done():
		return domain.Availability{}, ctx.Err()
	}
}

func TestAllow_OK(t *testing.T) {
	checker := &mockChecker{availability: domain.Availability{Status: domain.StockOK}}
	sut := NewGuard(checker, false, nil)

	assert.NoError(t, sut.Allow(context.Background(), 1, 2))
	assert.Equal(t, int32(2), checker.lastQty.Load())
}

func TestAllow_InsufficientStock(t *testing.T) {
	checker := &mockChecker{availability: domain.Availability{Status: domain.StockInsufficientStock, Message: "Only 2 left"}}
	sut := NewGuard(checker, false, nil)

	err := sut.Allow(context.Background(), 1, 5)
	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "Only 2 left", err.Error())
	assert.Equal(t, domain.StockInsufficientStock, blocked.Availability.Status)
}

func TestAllow_SoldOutDefaultMessage(t *testing.T) {
	checker := &mockChecker{availability: domain.Availability{Status: domain.StockSoldOut}}
	sut := NewGuard(checker, false, nil)

	err := sut.Allow(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Equal(t, "This product is currently sold out", err.Error())
}

func TestAllow_TransportErrorBlocksByDefault(t *testing.T) {
	checker := &mockChecker{err: errors.New("connection refused")}
	sut := NewGuard(checker, false, nil)

	assert.ErrorIs(t, sut.Allow(context.Background(), 1, 1), ErrAvailabilityUnknown)
}

func TestAllow_TransportErrorOptimistic(t *testing.T) {
	checker := &mockChecker{err: errors.New("connection refused")}
	sut := NewGuard(checker, true, nil)

	assert.NoError(t, sut.Allow(context.Background(), 1, 1))
}

func TestCheckAvailability_TransportErrorDegrades(t *testing.T) {
	sut := NewGuard(&mockChecker{err: errors.New("timeout")}, false, nil)

	a := sut.CheckAvailability(context.Background(), 1, 1)
	assert.Equal(t, domain.StockError, a.Status)
	assert.Equal(t, "Failed to check stock.", a.Message)
}

func TestCheckAvailability_UnknownStatus(t *testing.T) {
	sut := NewGuard(&mockChecker{availability: domain.Availability{Status: "maybe"}}, false, nil)

	assert.Equal(t, domain.StockError, sut.CheckAvailability(context.Background(), 1, 1).Status)
}

func TestCheckAvailability_ClampsQuantity(t *testing.T) {
	checker := &mockChecker{availability: domain.Availability{Status: domain.StockOK}}
	sut := NewGuard(checker, false, nil)

	sut.CheckAvailability(context.Background(), 1, 0)
	assert.Equal(t, int32(1), checker.lastQty.Load())
}

func TestCheckAvailability_CoalescesConcurrentChecks(t *testing.T) {
	checker := &mockChecker{
		availability: domain.Availability{Status: domain.StockOK},
		delay:        50 * time.Millisecond,
	}
	sut := NewGuard(checker, false, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, domain.StockOK, sut.CheckAvailability(context.Background(), 7, 3).Status)
		}()
	}
	wg.Wait()

	assert.Less(t, checker.calls.Load(), int32(10))
}

func TestAllow_SharedCheckSurvivesFirstCallerCancel(t *testing.T) {
	checker := &gatedChecker{started: make(chan struct{}), release: make(chan struct{})}
	sut := NewGuard(checker, false, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() { firstErr <- sut.Allow(firstCtx, 7, 1) }()
	<-checker.started

	secondErr := make(chan error, 1)
	go func() { secondErr <- sut.Allow(context.Background(), 7, 1) }()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, ErrAvailabilityUnknown)
	case <-time.After(time.Second):
		t.Fatal("canceled caller did not return")
	}

	close(checker.release)
	select {
	case err := <-secondErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, int32(1), checker.calls.Load())
}
