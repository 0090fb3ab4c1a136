package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// HTTPConfig configures the HTTP clients of this package.
type HTTPConfig struct {
	Timeout        time.Duration
	Retries        int
	RetryBackoff   time.Duration
	UserAgent      string
	MaxContentSize int64
}

// DefaultHTTPConfig returns the HTTP defaults.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:        30 * time.Second,
		Retries:        2,
		RetryBackoff:   500 * time.Millisecond,
		UserAgent:      "artgraph/1.0",
		MaxContentSize: 10 * 1024 * 1024,
	}
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// fetcher performs GET requests and retries transient failures.
type fetcher struct {
	client         *http.Client
	userAgent      string
	maxContentSize int64
	retries        int
	backoff        time.Duration
	logger         *slog.Logger
}

func newFetcher(cfg HTTPConfig, logger *slog.Logger) *fetcher {
	def := DefaultHTTPConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxContentSize <= 0 {
		cfg.MaxContentSize = def.MaxContentSize
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		userAgent:      cfg.UserAgent,
		maxContentSize: cfg.MaxContentSize,
		retries:        cfg.Retries,
		backoff:        cfg.RetryBackoff,
		logger:         logger,
	}
}

// get fetches url, retrying transport errors, 429 and 5xx responses.
func (f *fetcher) get(ctx context.Context, url, accept string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			wait := f.backoff << (attempt - 1)
			f.logger.Debug("Retrying request", "url", url, "attempt", attempt, "wait", wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		body, err := f.do(ctx, url, accept)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *fetcher) do(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxContentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxContentSize {
		return nil, fmt.Errorf("content too large (exceeds %d bytes)", f.maxContentSize)
	}
	return body, nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return true
}

func isNotFoundStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusGone)
}
