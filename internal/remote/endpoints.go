package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Credentials struct {
	Email    string `json:"LOGIN_EMAIL"`
	Password string `json:"LOGIN_PASSWORD"`
}

type LoginResult struct {
	Success bool                `json:"success"`
	User    *domain.UserSession `json:"user,omitempty"`
}

// RegisterRequest mirrors the registration form the service accepts.
type RegisterRequest struct {
	Name            string `json:"LOGIN_NAME"`
	Email           string `json:"LOGIN_EMAIL"`
	Phone           string `json:"LOGIN_PHONE"`
	Address         string `json:"LOGIN_ADDRESS"`
	Password        string `json:"LOGIN_PASSWORD"`
	ConfirmPassword string `json:"confirmPassword"`
}

type RegisterResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// GetAllData fetches every category with its products. The service answers either with a
// bare array or with {"categories": [...]}.
func (c *Client) GetAllData(ctx context.Context) ([]domain.Category, error) {
	r, err := c.get(ctx, "/all-data")
	if err != nil {
		return nil, err
	}
	if r.status != http.StatusOK {
		return nil, statusError(r)
	}

	trimmed := bytes.TrimSpace(r.body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Categories []domain.Category `json:"categories"`
		}
		if err := decode(r, &wrapped); err != nil {
			return nil, err
		}
		return wrapped.Categories, nil
	}

	var categories []domain.Category
	if err := decode(r, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CheckStock asks whether quantity units of the product can be bought.
func (c *Client) CheckStock(ctx context.Context, productID int64, quantity int) (domain.Availability, error) {
	q := url.Values{}
	q.Set("sub_id", strconv.FormatInt(productID, 10))
	q.Set("buy_quantity", strconv.Itoa(quantity))

	r, err := c.get(ctx, "/check-subproduct-stock?"+q.Encode())
	if err != nil {
		return domain.Availability{}, err
	}

	var a domain.Availability
	if jsonErr := json.Unmarshal(r.body, &a); jsonErr == nil && a.Status != "" {
		// stock answers are meaningful even on 4xx
		return a, nil
	}
	if r.status != http.StatusOK {
		return domain.Availability{}, statusError(r)
	}
	return domain.Availability{}, &TransportError{StatusCode: r.status, Err: fmt.Errorf("stock response without status")}
}

func (c *Client) CheckLogin(ctx context.Context, creds Credentials) (LoginResult, error) {
	r, err := c.post(ctx, "/check-login", creds, nil)
	if err != nil {
		return LoginResult{}, err
	}
	if r.status < 200 || r.status > 299 {
		return LoginResult{}, statusError(r)
	}
	var res LoginResult
	if err := decode(r, &res); err != nil {
		return LoginResult{}, err
	}
	return res, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResult, error) {
	r, err := c.post(ctx, "/register", req, nil)
	if err != nil {
		return RegisterResult{}, err
	}
	if r.status < 200 || r.status > 299 {
		return RegisterResult{}, statusError(r)
	}
	var res RegisterResult
	if err := decode(r, &res); err != nil {
		return RegisterResult{}, err
	}
	return res, nil
}

// PlaceOrder submits the order. Only 201 Created counts as success.
func (c *Client) PlaceOrder(ctx context.Context, idempotencyKey string, order domain.OrderRequest) (string, error) {
	header := http.Header{}
	if idempotencyKey != "" {
		header.Set("Idempotency-Key", idempotencyKey)
	}

	r, err := c.post(ctx, "/place-order", order, header)
	if err != nil {
		return "", err
	}
	if r.status != http.StatusCreated {
		return "", statusError(r)
	}

	var res struct {
		OrderID json.RawMessage `json:"order_id"`
	}
	if err := decode(r, &res); err != nil {
		return "", err
	}
	id := orderID(res.OrderID)
	if id == "" {
		return "", &TransportError{StatusCode: r.status, Err: fmt.Errorf("response without order_id")}
	}
	return id, nil
}

// orderID accepts the id as a JSON string or number.
func orderID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
