package client

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

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/muurk/canplot/internal/api"
	"github.com/muurk/canplot/internal/logging"
		"github.com/muurk/canplot/internal/signal"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the initial delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay caps the exponential backoff
	DefaultMaxRetryDelay = 10 * time.Second
)

// Client talks to a canplot server over its HTTP API
type Client struct {
	// BaseURL is the server root, e.g. "http://192.168.1.20:8080"
	BaseURL string

	HTTPClient *http.Client

	// MaxRetries bounds retries after transport errors and 502/503/504/429.
	// Other responses are returned immediately.
	MaxRetries int

	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		HTTPClient:    &http.Client{Timeout: DefaultTimeout},
		MaxRetries:    DefaultMaxRetries,
		RetryDelay:    DefaultRetryDelay,
		MaxRetryDelay: DefaultMaxRetryDelay,
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// Health fetches the server status and build information
func (c *Client) Health(ctx context.Context) (*api.HealthResponse, error) {
	var resp api.HealthResponse
	if err := c.do(ctx, http.MethodGet, api.PathHealth, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Types fetches the supported data types, byte orders and colors
func (c *Client) Types(ctx context.Context) (*api.TypesResponse, error) {
	var resp api.TypesResponse
	if err := c.do(ctx, http.MethodGet, api.PathTypes, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Extract decodes signals on the server. Results are in signals order.
func (c *Client) Extract(ctx context.Context, messages []signal.Message, signals []signal.Config) ([]*signal.Result, error) {
	var resp api.ExtractResponse
	req := api.ExtractRequest{Messages: messages, Signals: signals}
	if err := c.do(ctx, http.MethodPost, api.PathExtract, req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ArbIDs returns the distinct arbitration ids, sorted by the server
func (c *Client) ArbIDs(ctx context.Context, messages []signal.Message) ([]string, error) {
	var resp api.ArbIDsResponse
	if err := c.do(ctx, http.MethodPost, api.PathArbIDs, api.ArbIDsRequest{Messages: messages}, &resp); err != nil {
		return nil, err
	}
	return resp.ArbIDs, nil
}

// PayloadSize returns the largest payload in bits for arbID
func (c *Client) PayloadSize(ctx context.Context, messages []signal.Message, arbID string) (uint32, error) {
	var resp api.PayloadSizeResponse
	req := api.PayloadSizeRequest{Messages: messages, ArbID: arbID}
	if err := c.do(ctx, http.MethodPost, api.PathPayloadSize, req, &resp); err != nil {
		return 0, err
	}
	return resp.Bits, nil
}

// Validate checks one signal definition against messages
func (c *Client) Validate(ctx context.Context, messages []signal.Message, cfg signal.Config) (*signal.Validation, error) {
	var resp signal.Validation
	req := api.ValidateRequest{Messages: messages, Signal: cfg}
	if err := c.do(ctx, http.MethodPost, api.PathValidate, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends a request, retrying temporary failures with exponential backoff,
// and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.RetryDelay
	b.MaxInterval = c.MaxRetryDelay
	b.MaxElapsedTime = 0
	b.Reset()

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := b.NextBackOff()
			logging.Debug("Retrying request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		lastErr = c.attempt(ctx, method, path, payload, out)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", c.MaxRetries+1, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) error {
	url := c.BaseURL + path

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &NetworkError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var body api.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	return apiErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Temporary()
}
