// Package stock gates cart mutations on the remote availability check.
package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"golang.org/x/sync/singleflight"
)

const checkFailedMessage = "Failed to check stock."

// sharedCheckTimeout bounds a coalesced check, which runs apart from any one caller.
const sharedCheckTimeout = 15 * time.Second

// ErrAvailabilityUnknown is returned when the stock check itself failed and the guard
// is not configured to proceed optimistically.
var ErrAvailabilityUnknown = errors.New("stock availability unknown, please try again")

// BlockedError rejects an add or increment the service said cannot be fulfilled.
type BlockedError struct {
	Availability domain.Availability
}

func (e *BlockedError) Error() string {
	if e.Availability.Message != "" {
		return e.Availability.Message
	}
	if e.Availability.Status == domain.StockSoldOut {
		return "This product is currently sold out"
	}
	return "Not enough stock for the requested quantity"
}

// Checker is the remote side of the guard, satisfied by *remote.Client.
type Checker interface {
	CheckStock(ctx context.Context, productID int64, quantity int) (domain.Availability, error)
}

type Guard struct {
	checker           Checker
	optimisticOnError bool
	log               *slog.Logger
	sfg               singleflight.Group // identical checks in flight share one request
}

// NewGuard builds a guard. With optimisticOnError a failed check lets the action through.
func NewGuard(checker Checker, optimisticOnError bool, log *slog.Logger) *Guard {
	return &Guard{
		checker:           checker,
		optimisticOnError: optimisticOnError,
		log:               logger.OrDiscard(log).With("component", "stock"),
	}
}

// CheckAvailability never fails: transport problems and unknown statuses come back as
// status "error".
func (g *Guard) CheckAvailability(ctx context.Context, productID int64, quantity int) domain.Availability {
	if quantity < 1 {
		quantity = 1
	}
	key := fmt.Sprintf("%d:%d", productID, quantity)
	ch := g.sfg.DoChan(key, func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCheckTimeout)
		defer cancel()
		return g.checker.CheckStock(cctx, productID, quantity)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = singleflight.Result{Err: ctx.Err()}
	}
	v, err := res.Val, res.Err
	if err != nil {
		g.log.WarnContext(ctx, "stock check failed", "product_id", productID, "quantity", quantity, "error", err)
		return domain.Availability{Status: domain.StockError, Message: checkFailedMessage}
	}

	a := v.(domain.Availability)
	switch a.Status {
	case domain.StockOK, domain.StockSoldOut, domain.StockInsufficientStock, domain.StockError:
		return a
	default:
		g.log.WarnContext(ctx, "unexpected stock status", "product_id", productID, "status", a.Status)
		return domain.Availability{Status: domain.StockError, Message: a.Message}
	}
}

// Allow returns nil when quantity units of the product may be added.
func (g *Guard) Allow(ctx context.Context, productID int64, quantity int) error {
	a := g.CheckAvailability(ctx, productID, quantity)
	switch {
	case a.Blocks():
		return &BlockedError{Availability: a}
	case a.Status == domain.StockError:
		if g.optimisticOnError {
			g.log.InfoContext(ctx, "stock unknown, proceeding optimistically", "product_id", productID)
			return nil
		}
		return ErrAvailabilityUnknown
	default:
		return nil
	}
}
