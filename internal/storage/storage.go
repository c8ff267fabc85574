// Package storage holds the durable local state of the storefront: the cart, the
// signed in user and the auth token, each under a fixed key.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys shared by every backend.
const (
	KeyCart  = "cart"
	KeyUser  = "user"
	KeyToken = "token"
)

var ErrNotFound = errors.New("key not found")

// Store is the port the cart and session stores persist through.
// Consumers depend on this interface, never on a concrete backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// LoadJSON reads key and decodes it into v. It returns ErrNotFound when the key is absent.
func LoadJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}
