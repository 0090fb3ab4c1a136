package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// DefaultRecordURL is the record API base for portraits.
const DefaultRecordURL = "https://api.rkd.nl/api/record/portraits/"

// RecordFetcher retrieves raw records by id.
type RecordFetcher interface {
	FetchRecord(ctx context.Context, id string) (*Record, error)
}

// Client fetches records from the JSON record API.
type Client struct {
	baseURL string
	http    *fetcher
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, cfg HTTPConfig, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultRecordURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{baseURL: baseURL, http: newFetcher(cfg, logger)}
}

// RecordURL returns the API URL of a record.
func (c *Client) RecordURL(id string) string {
	return c.baseURL + url.PathEscape(id) + "?format=json"
}

// FetchRecord fetches and decodes the record with the given id.
func (c *Client) FetchRecord(ctx context.Context, id string) (*Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("fetch record: empty id")
	}
	body, err := c.http.get(ctx, c.RecordURL(id), "application/json")
	if err != nil {
		if isNotFoundStatus(err) {
			return nil, fmt.Errorf("fetch record %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch record %s: %w", id, err)
	}
	rec, err := ParseRecord(body)
	if err != nil {
		return nil, fmt.Errorf("fetch record %s: %w", id, err)
	}
	return rec, nil
}
