// Package cart owns the visitor's cart and keeps it written through to local storage.
package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

// Store is the only writer of the cart. Every mutation persists the full item list
// before it returns.
type Store struct {
	mu      sync.Mutex
	storage storage.Store
	log     *slog.Logger
	items   domain.Cart
}

func NewStore(s storage.Store, log *slog.Logger) *Store {
	return &Store{
		storage: s,
		log:     logger.OrDiscard(log).With("component", "cart"),
		items:   domain.Cart{},
	}
}

// Load rehydrates the cart from storage. Absent, malformed or non array data yields an
// empty cart; it is never reported as an error.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, healed := s.read(ctx)
	s.items = items
	if healed {
		s.persist(ctx, items)
	}
}

func (s *Store) read(ctx context.Context) (domain.Cart, bool) {
	data, err := s.storage.Get(ctx, storage.KeyCart)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Cart{}, false
	}
	if err != nil {
		s.log.WarnContext(ctx, "cart load failed, starting empty", "error", err)
		return domain.Cart{}, false
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		s.log.WarnContext(ctx, "persisted cart is not a list, resetting")
		return domain.Cart{}, true
	}

	var items domain.Cart
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.WarnContext(ctx, "persisted cart is malformed, resetting", "error", err)
		return domain.Cart{}, true
	}
	for i := range items {
		items[i] = items[i].Normalized()
	}
	if items == nil {
		items = domain.Cart{}
	}
	return items, false
}

// Add appends the item. Identical entries are kept apart.
func (s *Store) Add(ctx context.Context, item domain.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(s.items.Clone(), item.Normalized())
	s.commit(ctx, next)
}

// RemoveOne drops the first entry for productID. It reports whether anything was removed.
func (s *Store) RemoveOne(ctx context.Context, productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.items {
		if item.ProductID != productID {
			continue
		}
		next := make(domain.Cart, 0, len(s.items)-1)
		next = append(next, s.items[:i]...)
		next = append(next, s.items[i+1:]...)
		s.commit(ctx, next)
		return true
	}
	return false
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(ctx, domain.Cart{})
}

// Discard takes the ordered entries out of the cart once an order is confirmed. Entries
// added after the order snapshot stay; when nothing is left the storage entry is deleted.
func (s *Store) Discard(ctx context.Context, ordered domain.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	left := s.items.Clone()
	for _, o := range ordered {
		for i, item := range left {
			if item.Same(o) {
				left = append(left[:i], left[i+1:]...)
				break
			}
		}
	}
	if !left.IsEmpty() {
		s.commit(ctx, left)
		return
	}

	if err := s.storage.Remove(ctx, storage.KeyCart); err != nil {
		s.log.ErrorContext(ctx, "cart remove failed", "error", err)
	}
	s.items = domain.Cart{}
}

// Snapshot returns a copy callers may keep or modify freely.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

func (s *Store) commit(ctx context.Context, next domain.Cart) {
	s.persist(ctx, next)
	s.items = next
}

// persist writes through synchronously. A failed write is logged and the in memory
// cart still advances, so add never fails for the visitor.
func (s *Store) persist(ctx context.Context, items domain.Cart) {
	if err := storage.SaveJSON(ctx, s.storage, storage.KeyCart, items); err != nil {
		s.log.ErrorContext(ctx, "cart persist failed", "error", err, "items", len(items))
	}
}
