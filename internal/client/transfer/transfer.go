package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"
)

// ErrCanceled is returned when the caller canceled the transfer
var ErrCanceled = errors.New("transfer canceled")

// ErrTransferFailed is returned when storage rejected the object for a non retryable reason
var ErrTransferFailed = errors.New("transfer failed")

// ProgressFunc receives the transfer progress as a percentage, only when it changes
type ProgressFunc func(percent int)

// Target is where and how one file must be written
type Target struct {
	URL         string
	Headers     map[string]string
	ContentType string
	Size        int64
	ExpiresAt   time.Time
}

// TargetFrom builds the Target of a pre-signed file
func TargetFrom(f domain.PresignedFile) Target {
	return Target{
		URL:         f.PresignedURL,
		Headers:     f.Headers,
		ContentType: f.MimeType,
		Size:        f.Size,
		ExpiresAt:   f.ExpiresAt,
	}
}

// Uploader writes file bytes straight to object storage through pre-signed urls
type Uploader struct {
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an Uploader
type Option func(*Uploader)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(u *Uploader) {
		u.httpClient = client
	}
}

// WithClock replaces the clock used to check url expiry
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) {
		u.now = now
	}
}

// NewUploader creates an Uploader
func NewUploader(logger *slog.Logger, opts ...Option) *Uploader {
	u := &Uploader{
		// no overall timeout, large files are bounded by the context
		httpClient: &http.Client{},
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload streams body to target. Errors wrap ErrCanceled, domain.ErrURLExpired,
// domain.ErrTransient or ErrTransferFailed.
func (u *Uploader) Upload(ctx context.Context, target Target, body io.Reader, progress ProgressFunc) error {
	if !target.ExpiresAt.IsZero() && !u.now().Before(target.ExpiresAt) {
		return fmt.Errorf("url expired at %s: %w", target.ExpiresAt.Format(time.RFC3339), domain.ErrURLExpired)
	}

	reader := body
	if progress != nil {
		reader = &progressReader{reader: body, size: target.Size, callback: progress, last: -1}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.URL, reader)
	if err != nil {
		return fmt.Errorf("could not build request: %w", errors.Join(err, ErrTransferFailed))
	}
	req.ContentLength = target.Size
	if target.ContentType != "" {
		req.Header.Set("Content-Type", target.ContentType)
	}
	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		}
		return fmt.Errorf("upload failed: %w", errors.Join(err, domain.ErrTransient))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if progress != nil {
			progress(100)
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	u.logger.Debug("storage rejected upload", "status", resp.StatusCode, "body", string(raw))
	return classify(resp.StatusCode, string(raw))
}

func classify(status int, body string) error {
	switch {
	case status == http.StatusForbidden && (strings.Contains(body, "AccessDenied") || strings.Contains(body, "Request has expired")):
		return fmt.Errorf("storage answered %d: %w", status, domain.ErrURLExpired)
	case status >= 500, status == http.StatusTooManyRequests, status == http.StatusRequestTimeout:
		return fmt.Errorf("storage answered %d: %w", status, domain.ErrTransient)
	default:
		return fmt.Errorf("storage answered %d: %w", status, ErrTransferFailed)
	}
}

type progressReader struct {
	reader    io.Reader
	size      int64
	bytesRead int64
	last      int
	callback  ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.bytesRead += int64(n)
	if n > 0 && pr.size > 0 {
		percent := int(pr.bytesRead * 100 / pr.size)
		if percent > 100 {
			percent = 100
		}
		// 100 is reported once storage acknowledged the object
		if percent == 100 {
			percent = 99
		}
		if percent != pr.last {
			pr.last = percent
			pr.callback(percent)
		}
	}
	return n, err
}
