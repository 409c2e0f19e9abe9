package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 4 << 20

type Options struct {
	BaseURL string
	// Timeout bounds a single request, including waiting for the limiter.
	Timeout time.Duration
	// RateLimit is requests per second; zero disables pacing.
	RateLimit  float64
	RateBurst  int
	HTTPClient *http.Client
	Logger     logging.Logger
}

type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     logging.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

func NewHTTPClient(opts Options) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	return &HTTPClient{
		baseURL:    u,
		httpClient: hc,
		limiter:    limiter,
		timeout:    opts.Timeout,
		logger:     logger.With("component", "transport"),
	}, nil
}

// SetTokenSource wires the session owner in. Calls made before this is set
// fail authorization locally.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *HTTPClient) tokenSource() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *HTTPClient) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String()
}

type call struct {
	method string
	path   string
	auth   bool
	body   any
	out    any
}

func (c *HTTPClient) do(ctx context.Context, cl call) error {
	var token string
	var ts TokenSource
	if cl.auth {
		ts = c.tokenSource()
		if ts != nil {
			token = ts.Token()
		}
		if token == "" {
			return ErrUnauthorized
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var reader io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.endpoint(cl.path), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.auth {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	log := c.logger.With("method", cl.method, "path", cl.path, "request_id", requestID)
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	log.Debug(ctx, "request done", "status", resp.StatusCode, "elapsed", time.Since(started))

	if err := statusError(resp.StatusCode, body); err != nil {
		if cl.auth && errors.Is(err, ErrUnauthorized) && ts != nil {
			log.Warn(ctx, "token rejected by backend", "status", resp.StatusCode)
			ts.Expire(ctx, token)
		}
		return err
	}

	if cl.out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapData(body), cl.out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func statusError(code int, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return ErrUnauthorized
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	}

	if ve, ok := parseValidation(body); ok {
		return ve
	}
	if code == http.StatusUnprocessableEntity {
		return &ValidationError{Message: bodyMessage(body)}
	}
	return &StatusError{Code: code, Message: bodyMessage(body)}
}

// unwrapData lets collection endpoints answer either with a bare value or
// with a {"data": ...} envelope.
func unwrapData(body []byte) []byte {
	doc := gjson.ParseBytes(body)
	if doc.IsObject() {
		if data := doc.Get("data"); data.Exists() && (data.IsArray() || data.IsObject()) {
			return []byte(data.Raw)
		}
	}
	return body
}

func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Ping reports whether the backend answers at all; any HTTP status counts.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.endpoint("/"), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *HTTPClient) Login(ctx context.Context, identifier, password string) (*models.AuthResult, error) {
	var res models.AuthResult
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/login",
		body:   models.LoginRequest{Identifier: identifier, Password: password},
		out:    &res,
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, r models.RegisterRequest) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, call{method: http.MethodPost, path: "/register", body: r, out: &res}); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/logout", auth: true})
}

func adminPath(kind models.ResourceKind) string {
	return "/admin/" + string(kind)
}

func itemPath(kind models.ResourceKind, id int64) string {
	return adminPath(kind) + "/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := c.do(ctx, call{method: http.MethodGet, path: adminPath(models.KindCategories), auth: true, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, call{method: http.MethodGet, path: adminPath(models.KindProducts), auth: true, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateResource(ctx context.Context, kind models.ResourceKind, fields any) error {
	return c.do(ctx, call{method: http.MethodPost, path: adminPath(kind), auth: true, body: fields})
}

func (c *HTTPClient) UpdateResource(ctx context.Context, kind models.ResourceKind, id int64, fields any) error {
	return c.do(ctx, call{method: http.MethodPut, path: itemPath(kind, id), auth: true, body: fields})
}

func (c *HTTPClient) DeleteResource(ctx context.Context, kind models.ResourceKind, id int64) error {
	return c.do(ctx, call{method: http.MethodDelete, path: itemPath(kind, id), auth: true})
}

func (c *HTTPClient) Summary(ctx context.Context) (*models.Summary, error) {
	var out models.Summary
	if err := c.do(ctx, call{method: http.MethodGet, path: "/admin/analytics/summary", auth: true, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Series(ctx context.Context, metric models.Metric, window models.Window) ([]models.Point, error) {
	if !window.Valid() {
		return nil, models.ErrUnknownWindow
	}
	path := fmt.Sprintf("/admin/analytics/%s/%s", metric, window)

	var out []models.Point
	if err := c.do(ctx, call{method: http.MethodGet, path: path, auth: true, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}
