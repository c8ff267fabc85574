package api

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
)

type CatalogService interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, id int64) (domain.Category, error)
	StockStatus(id int64) (domain.StockStatus, bool)
}

type CartService interface {
	Snapshot() domain.Cart
	RemoveOne(ctx context.Context, productID int64) bool
	Clear(ctx context.Context)
}

type ShopService interface {
	Quantity(id int64) int
	Increase(ctx context.Context, id int64) (int, error)
	Decrease(id int64) int
	Set(ctx context.Context, id int64, raw string) (int, error)
	AddToCart(ctx context.Context, id int64, unit string, quantity int) (domain.LineItem, error)
}

type CheckoutService interface {
	Submit(ctx context.Context) (domain.Order, error)
	Status() checkout.Status
}

type SessionService interface {
	Authenticate(ctx context.Context, form session.LoginForm) (domain.UserSession, error)
	Register(ctx context.Context, form session.RegisterForm) (string, error)
	Logout(ctx context.Context)
	Current() (domain.UserSession, bool)
}
