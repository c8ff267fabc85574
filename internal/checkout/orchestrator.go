// Package checkout turns the cart and the signed in user into a placed order.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/pricing"
	"github.com/fjod/go_cart/storefront/internal/remote"
	"github.com/google/uuid"
)

type Cart interface {
	Snapshot() domain.Cart
	Discard(ctx context.Context, ordered domain.Cart)
}

type Session interface {
	CheckoutUser() (domain.UserSession, bool)
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, idempotencyKey string, order domain.OrderRequest) (string, error)
}

// ReceiptLog stores confirmed orders for later relay.
type ReceiptLog interface {
	Append(ctx context.Context, order domain.Order) error
}

// Status is a read only view of the orchestrator.
type Status struct {
	State       domain.CheckoutState `json:"state"`
	LastOrderID string               `json:"last_order_id,omitempty"`
	LastError   string               `json:"last_error,omitempty"`
}

type Orchestrator struct {
	mu      sync.Mutex
	state   domain.CheckoutState
	lastID  string
	lastErr string

	cart     Cart
	session  Session
	placer   OrderPlacer
	receipts ReceiptLog
	timeout  time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewOrchestrator wires the orchestrator. receipts may be nil; timeout bounds a submission
// once it is detached from the caller.
func NewOrchestrator(cart Cart, session Session, placer OrderPlacer, receipts ReceiptLog, timeout time.Duration, log *slog.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{
		state:    domain.CheckoutStateIdle,
		cart:     cart,
		session:  session,
		placer:   placer,
		receipts: receipts,
		timeout:  timeout,
		log:      logger.OrDiscard(log).With("component", "checkout"),
		now:      time.Now,
	}
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Status{State: o.state, LastOrderID: o.lastID, LastError: o.lastErr}
}

// Submit places an order for the current cart. Preconditions are checked before any
// network call; a second call while one is in flight is rejected, not queued.
func (o *Orchestrator) Submit(ctx context.Context) (domain.Order, error) {
	user, ok := o.session.CheckoutUser()
	if !ok {
		return domain.Order{}, ErrAuthRequired
	}
	items := o.cart.Snapshot()
	if items.IsEmpty() {
		return domain.Order{}, ErrEmptyCart
	}

	if err := o.begin(); err != nil {
		return domain.Order{}, err
	}

	req := domain.OrderRequest{
		CartData: items,
		UserData: domain.OrderUserFrom(user),
		Total:    pricing.FormatCartTotal(items),
	}
	key := uuid.NewString()

	// the caller going away must not abort an order the service may already be creating
	subCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	o.log.InfoContext(ctx, "submitting order", "idempotency_key", key, "items", len(items), "total", req.Total)
	id, err := o.placer.PlaceOrder(subCtx, key, req)
	if err != nil {
		return domain.Order{}, o.fail(ctx, key, err)
	}

	order := domain.Order{
		ID:          id,
		LineItems:   items,
		User:        req.UserData,
		Total:       req.Total,
		ConfirmedAt: o.now().UTC(),
	}
	o.cart.Discard(subCtx, items)
	if o.receipts != nil {
		if err := o.receipts.Append(subCtx, order); err != nil {
			o.log.ErrorContext(ctx, "receipt append failed", "order_id", id, "error", err)
		}
	}
	o.confirm(ctx, order)
	return order, nil
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == domain.CheckoutStateSubmitting {
		return ErrSubmissionInFlight
	}
	if err := o.transition(domain.CheckoutStateSubmitting); err != nil {
		return err
	}
	o.lastErr = ""
	return nil
}

func (o *Orchestrator) confirm(ctx context.Context, order domain.Order) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastID = order.ID
	o.settle(ctx, domain.CheckoutStateConfirmed)
	o.log.InfoContext(ctx, "order confirmed", "order_id", order.ID, "total", order.Total)
}

func (o *Orchestrator) fail(ctx context.Context, key string, cause error) error {
	msg := remote.ServerMessage(cause)
	if msg == "" {
		msg = fallbackMessage
	}
	subErr := &SubmissionError{Message: msg, Err: cause}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = subErr.Error()
	o.settle(ctx, domain.CheckoutStateFailed)
	o.log.WarnContext(ctx, "order submission failed", "idempotency_key", key, "error", cause)
	return subErr
}

// settle moves through a terminal state and straight back to idle. Caller holds mu.
func (o *Orchestrator) settle(ctx context.Context, terminal domain.CheckoutState) {
	for _, next := range []domain.CheckoutState{terminal, domain.CheckoutStateIdle} {
		if err := o.transition(next); err != nil {
			o.log.ErrorContext(ctx, "checkout state", "error", err)
			o.state = domain.CheckoutStateIdle
			return
		}
	}
}

func (o *Orchestrator) transition(to domain.CheckoutState) error {
	if !domain.CanTransitionTo(o.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.state, to)
	}
	o.state = to
	return nil
}
