package gingr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Client talks to the Gingr REST API for one tenant. It applies a
// per-request timeout, retries transient failures with exponential backoff,
// and enforces a fixed inter-request delay so a full import stays inside
// the remote rate limit even on the happy path.
type Client struct {
	hc      *http.Client
	baseURL string
	apiKey  string

	maxAttempts  int
	backoffBase  time.Duration
	requestDelay time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// Config carries the per-tenant connection settings.
type Config struct {
	// BaseURL is the tenant's API root, e.g. https://acme.gingrapp.com/api/v1.
	BaseURL string
	APIKey  string
	// RequestTimeout bounds each HTTP call. Defaults to 10s.
	RequestTimeout time.Duration
	// RequestDelay is the fixed gap enforced between consecutive requests.
	// Defaults to 250ms.
	RequestDelay time.Duration
	// MaxAttempts caps retries for transient failures. Defaults to 3.
	MaxAttempts int
	// BackoffBase is the first retry delay; each retry doubles it.
	// Defaults to 500ms.
	BackoffBase time.Duration
}

// ErrNotFound signals the remote record does not exist.
var ErrNotFound = errors.New("gingr record not found")

// APIError is a non-2xx response from the remote API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gingr API error: %s (status=%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("gingr API error (status=%d)", e.StatusCode)
}

// Temporary reports whether the error is worth retrying.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// New builds a client with sane defaults applied.
func New(cfg Config, httpClient *http.Client) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("gingr base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gingr API key is required")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout
	c := &Client{
		hc:           httpClient,
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		maxAttempts:  cfg.MaxAttempts,
		backoffBase:  cfg.BackoffBase,
		requestDelay: cfg.RequestDelay,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 3
	}
	if c.backoffBase <= 0 {
		c.backoffBase = 500 * time.Millisecond
	}
	if c.requestDelay <= 0 {
		c.requestDelay = 250 * time.Millisecond
	}
	return c, nil
}

// FetchPage pulls one slice of a collection. Offsets are item offsets, not
// page numbers; Done is set when the page reaches the reported total.
func (c *Client) FetchPage(ctx context.Context, collection string, offset, limit int) (Page, error) {
	if limit <= 0 {
		return Page{}, errors.New("page limit must be positive")
	}
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))
	body, err := c.get(ctx, "/"+collection, query)
	if err != nil {
		return Page{}, err
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Page{}, fmt.Errorf("decode %s page at offset %d: %w", collection, offset, err)
	}
	items := env.Data[collection]
	page := Page{Offset: offset, Total: env.Pagination.TotalCount}
	page.Records = make([]Record, 0, len(items))
	for _, item := range items {
		page.Records = append(page.Records, Record{ID: recordID(item), Payload: item})
	}
	page.Done = len(items) == 0 || offset+len(items) >= page.Total
	return page, nil
}

// FetchOne pulls a single record with its detail sub-resources.
func (c *Client) FetchOne(ctx context.Context, collection, externalID string) (Record, error) {
	if strings.TrimSpace(externalID) == "" {
		return Record{}, errors.New("external id is required")
	}
	body, err := c.get(ctx, "/"+collection+"/"+url.PathEscape(externalID), nil)
	if err != nil {
		return Record{}, err
	}
	var env detailEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Record{}, fmt.Errorf("decode %s/%s: %w", collection, externalID, err)
	}
	return Record{ID: recordID(env.Data), Payload: env.Data}, nil
}

// get runs one GET with the retry and rate-limit policy applied.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := c.backoffBase << (attempt - 2)
			if err := sleepCtx(ctx, backoff); err != nil {
				return nil, err
			}
		}
		if err := c.waitForRateGate(ctx); err != nil {
			return nil, err
		}
		body, err := c.doOnce(ctx, path, query)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isTransient(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("gingr request failed after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) doOnce(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	for key, values := range query {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.StatusCode >= 400 {
		return nil, &APIError{StatusCode: res.StatusCode, Message: apiMessage(body)}
	}
	return body, nil
}

// waitForRateGate blocks until the fixed inter-request delay since the last
// call has elapsed. The gate is shared across every call through the client.
func (c *Client) waitForRateGate(ctx context.Context) error {
	c.mu.Lock()
	wait := c.requestDelay - time.Since(c.lastRequest)
	if c.lastRequest.IsZero() {
		wait = 0
	}
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()
	if wait <= 0 {
		return nil
	}
	return sleepCtx(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isTransient reports whether a failure should be retried: timeouts,
// connection resets, and retryable API statuses. Other client-side errors
// and 4xx responses are permanent.
func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	return false
}

func apiMessage(body []byte) string {
	var probe struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	if probe.Message != "" {
		return probe.Message
	}
	return probe.Error
}
