// Package storefront is the visitor facing surface over the catalog and the cart:
// per product quantity selectors and stock guarded add to cart.
package storefront

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/stock"
)

type Catalog interface {
	Product(ctx context.Context, id int64) (domain.SubProduct, domain.Category, error)
	LineItem(p domain.SubProduct, cat domain.Category, unit string, quantity int) (domain.LineItem, error)
	SetStockStatus(id int64, status domain.StockStatus)
}

// Guard is satisfied by *stock.Guard.
type Guard interface {
	Allow(ctx context.Context, productID int64, quantity int) error
}

type Cart interface {
	Add(ctx context.Context, item domain.LineItem)
}

type Storefront struct {
	catalog Catalog
	guard   Guard
	cart    Cart
	log     *slog.Logger

	mu         sync.Mutex
	quantities map[int64]int
}

func New(catalog Catalog, guard Guard, cart Cart, log *slog.Logger) *Storefront {
	return &Storefront{
		catalog:    catalog,
		guard:      guard,
		cart:       cart,
		log:        logger.OrDiscard(log).With("component", "storefront"),
		quantities: map[int64]int{},
	}
}

// Quantity is the selected quantity of a product, 1 until changed.
func (s *Storefront) Quantity(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quantityLocked(id)
}

func (s *Storefront) quantityLocked(id int64) int {
	if q, ok := s.quantities[id]; ok && q >= 1 {
		return q
	}
	return 1
}

func (s *Storefront) Decrease(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := max(1, s.quantityLocked(id)-1)
	s.quantities[id] = q
	return q
}

// Increase bumps the selection by one if the service has that many units.
// On rejection the selection stays where it was.
func (s *Storefront) Increase(ctx context.Context, id int64) (int, error) {
	return s.setGuarded(ctx, id, s.Quantity(id)+1)
}

// Set parses raw input; anything that is not a positive number becomes 1.
func (s *Storefront) Set(ctx context.Context, id int64, raw string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || q < 1 {
		q = 1
	}
	return s.setGuarded(ctx, id, q)
}

func (s *Storefront) setGuarded(ctx context.Context, id int64, q int) (int, error) {
	if err := s.guard.Allow(ctx, id, q); err != nil {
		s.markSoldOut(id, err)
		return s.Quantity(id), err
	}
	s.mu.Lock()
	s.quantities[id] = q
	s.mu.Unlock()
	return q, nil
}

// AddToCart adds the product at the chosen rate. quantity below 1 uses the current selection.
// The cart is left untouched when the stock check rejects the add.
func (s *Storefront) AddToCart(ctx context.Context, id int64, unit string, quantity int) (domain.LineItem, error) {
	if quantity < 1 {
		quantity = s.Quantity(id)
	}

	p, cat, err := s.catalog.Product(ctx, id)
	if err != nil {
		return domain.LineItem{}, err
	}
	item, err := s.catalog.LineItem(p, cat, unit, quantity)
	if err != nil {
		return domain.LineItem{}, err
	}

	if err := s.guard.Allow(ctx, id, item.Quantity); err != nil {
		s.markSoldOut(id, err)
		s.log.InfoContext(ctx, "add to cart rejected", "product_id", id, "quantity", item.Quantity, "error", err)
		return domain.LineItem{}, err
	}

	s.cart.Add(ctx, item)
	s.log.InfoContext(ctx, "added to cart", "product_id", id, "quantity", item.Quantity)
	return item, nil
}

func (s *Storefront) markSoldOut(id int64, err error) {
	var blocked *stock.BlockedError
	if errors.As(err, &blocked) && blocked.Availability.Status == domain.StockSoldOut {
		s.catalog.SetStockStatus(id, domain.StockSoldOut)
	}
}
