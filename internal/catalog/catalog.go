// Package catalog loads categories from the ordering service and tracks per product stock.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrNoRates          = errors.New("no rates available for this product")
	ErrUnknownRate      = errors.New("no rate for the selected size")
)

const (
	sweepConcurrency = 8
	firstLoadTimeout = 30 * time.Second
)

type Source interface {
	GetAllData(ctx context.Context) ([]domain.Category, error)
	ImageURL(name string) string
}

// AvailabilityChecker is satisfied by *stock.Guard.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, productID int64, quantity int) domain.Availability
}

type Catalog struct {
	source  Source
	checker AvailabilityChecker
	log     *slog.Logger
	sfg     singleflight.Group // first loads share one fetch and sweep

	mu         sync.RWMutex
	categories []domain.Category
	stock      map[int64]domain.StockStatus
}

func New(source Source, checker AvailabilityChecker, log *slog.Logger) *Catalog {
	return &Catalog{
		source:  source,
		checker: checker,
		log:     logger.OrDiscard(log).With("component", "catalog"),
		stock:   map[int64]domain.StockStatus{},
	}
}

// Load fetches every category and checks each product for a single unit of stock.
// The stock map is replaced only after the sweep finishes.
func (c *Catalog) Load(ctx context.Context) ([]domain.Category, error) {
	categories, err := c.source.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	stock := c.sweep(ctx, categories)

	c.mu.Lock()
	c.categories = categories
	c.stock = stock
	c.mu.Unlock()

	c.log.InfoContext(ctx, "catalog loaded", "categories", len(categories), "products", len(stock))
	return categories, nil
}

func (c *Catalog) sweep(ctx context.Context, categories []domain.Category) map[int64]domain.StockStatus {
	var (
		mu    sync.Mutex
		stock = map[int64]domain.StockStatus{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, cat := range categories {
		for _, p := range cat.SubProducts {
			id := p.ID
			g.Go(func() error {
				a := c.checker.CheckAvailability(gctx, id, 1)
				mu.Lock()
				stock[id] = a.Status
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait() // every check reports through its status
	return stock
}

func (c *Catalog) loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categories != nil
}

// Categories returns the loaded categories, fetching them the first time. Concurrent
// first callers wait on a single load.
func (c *Catalog) Categories(ctx context.Context) ([]domain.Category, error) {
	if c.loaded() {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return c.categories, nil
	}

	ch := c.sfg.DoChan("load", func() (interface{}, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), firstLoadTimeout)
		defer cancel()
		return c.Load(lctx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Category), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Catalog) Category(ctx context.Context, id int64) (domain.Category, error) {
	categories, err := c.Categories(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	for _, cat := range categories {
		if cat.ID == id {
			return cat, nil
		}
	}
	return domain.Category{}, ErrCategoryNotFound
}

// Product finds a product and the category it is listed under.
func (c *Catalog) Product(ctx context.Context, id int64) (domain.SubProduct, domain.Category, error) {
	categories, err := c.Categories(ctx)
	if err != nil {
		return domain.SubProduct{}, domain.Category{}, err
	}
	for _, cat := range categories {
		for _, p := range cat.SubProducts {
			if p.ID == id {
				return p, cat, nil
			}
		}
	}
	return domain.SubProduct{}, domain.Category{}, ErrProductNotFound
}

// StockStatus returns the last known status of a product.
func (c *Catalog) StockStatus(id int64) (domain.StockStatus, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.stock[id]
	return s, ok
}

func (c *Catalog) SetStockStatus(id int64, status domain.StockStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stock[id] = status
}

// LineItem prices a product for the cart. An empty unit picks the default rate.
func (c *Catalog) LineItem(p domain.SubProduct, cat domain.Category, unit string, quantity int) (domain.LineItem, error) {
	if len(p.RateEntities) == 0 {
		return domain.LineItem{}, ErrNoRates
	}

	rate, _ := p.DefaultRate()
	if unit != "" {
		var ok bool
		if rate, ok = p.RateFor(unit); !ok {
			return domain.LineItem{}, ErrUnknownRate
		}
	}

	item := domain.LineItem{
		ProductID:       p.ID,
		ProductName:     p.Name,
		CategoryName:    cat.Name,
		UnitLabel:       string(rate.Quantity),
		UnitRate:        rate.Rate,
		DiscountPercent: rate.Discount,
		Quantity:        quantity,
	}
	if p.Image != "" {
		item.ImageRef = c.source.ImageURL(p.Image)
	}
	return item.Normalized(), nil
}
