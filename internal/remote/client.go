// Package remote is the HTTP client of the catalog and ordering service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Options struct {
	BaseURL string
	Timeout time.Duration
	// MaxFailures consecutive transport failures open the circuit for OpenTimeout.
	MaxFailures uint32
	OpenTimeout time.Duration
	HTTPClient  *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*response]
}

type response struct {
	status int
	body   []byte
}

// errServer marks 5xx answers so the breaker counts them while callers still get the body.
var errServer = errors.New("server error")

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   opts.Timeout,
		}
	}

	maxFailures := opts.MaxFailures
	breaker := gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        "ordering-service",
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    httpClient,
		breaker: breaker,
	}
}

// ImageURL resolves a product image name against the service's image directory.
func (c *Client) ImageURL(name string) string {
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%s/subimages/%s", c.baseURL, name)
}

func (c *Client) get(ctx context.Context, path string) (*response, error) {
	return c.do(ctx, http.MethodGet, path, nil, nil)
}

func (c *Client) post(ctx context.Context, path string, payload any, header http.Header) (*response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body, header)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, header http.Header) (*response, error) {
	resp, err := c.breaker.Execute(func() (*response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		for k, v := range header {
			req.Header[k] = v
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		httpResp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(httpResp.Body, 4<<20))
		if err != nil {
			return nil, err
		}
		r := &response{status: httpResp.StatusCode, body: data}
		if httpResp.StatusCode >= http.StatusInternalServerError {
			return r, errServer
		}
		return r, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &TransportError{Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	if errors.Is(err, errServer) && resp != nil {
		return nil, &TransportError{StatusCode: resp.status, Message: errorMessage(resp.body)}
	}
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}

// statusError builds the error for a non 2xx answer that did not trip the breaker.
func statusError(r *response) error {
	return &TransportError{StatusCode: r.status, Message: errorMessage(r.body)}
}

func decode(r *response, v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return &TransportError{StatusCode: r.status, Err: fmt.Errorf("decode response failed: %w", err)}
	}
	return nil
}

// errorMessage extracts {"error": ...} or {"message": ...} from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
