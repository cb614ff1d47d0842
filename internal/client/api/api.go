package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/sethvargo/go-retry"
)

// Error is a non-2xx answer of the API, carrying the code the server classified it with
type Error struct {
	Status  int
	Code    domain.ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// Kind makes domain.KindOf understand API errors
func (e *Error) Kind() domain.ErrorKind {
	return e.Code
}

// Client calls the upload API with a bearer token. Transient failures are retried with exponential backoff.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retries    uint64
	backoff    time.Duration
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRetry bounds automatic retries of transient failures
func WithRetry(retries uint64, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.backoff = backoff
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the API rooted at baseURL, e.g. http://localhost:8080/api/v1
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retries:    3,
		backoff:    300 * time.Millisecond,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one JSON request and decodes the answer into out when out is not nil.
// Every transient failure is retried.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.call(ctx, method, path, in, out, domain.Retryable)
}

// doOnce is do for requests the server must not apply twice. A lost connection may hide a
// committed request, so only a transient answer of the server itself is retried.
func (c *Client) doOnce(ctx context.Context, method, path string, in, out any) error {
	return c.call(ctx, method, path, in, out, func(err error) bool {
		var apiErr *Error
		if !errors.As(err, &apiErr) || apiErr.Code != domain.KindNetworkTransient {
			return false
		}
		return apiErr.Status == http.StatusServiceUnavailable || apiErr.Status == http.StatusTooManyRequests
	})
}

func (c *Client) call(ctx context.Context, method, path string, in, out any, retryable func(error) bool) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("could not encode request: %w", err)
		}
	}

	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.once(ctx, method, path, payload, out)
		if err != nil && retryable(err) {
			c.logger.Warn("api call failed, retrying", "method", method, "path", path, "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(err, domain.ErrTransient))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode %s %s response: %w", method, path, err)
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &Error{Status: resp.StatusCode}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Code != "" {
		apiErr.Code = domain.ErrorKind(body.Code)
		apiErr.Message = body.Error
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	switch {
	case resp.StatusCode == http.StatusBadGateway, resp.StatusCode == http.StatusServiceUnavailable,
		resp.StatusCode == http.StatusGatewayTimeout, resp.StatusCode == http.StatusTooManyRequests:
		apiErr.Code = domain.KindNetworkTransient
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr.Code = domain.KindAuthExpired
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Code = domain.KindNotFound
	case resp.StatusCode == http.StatusConflict:
		apiErr.Code = domain.KindConflict
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		apiErr.Code = domain.KindValidation
	default:
		apiErr.Code = domain.KindInternal
	}
	return apiErr
}
