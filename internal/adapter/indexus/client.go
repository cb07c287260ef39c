// Package indexus talks to the spatial index store over HTTP: reading the
// contents of a cell and inserting readings.
package indexus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/moodmap/internal/domain"
)

// Client implements domain.Fetcher and domain.IndexWriter against the index
// store's HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an index store client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Fetch returns the elements stored exactly at address. A 404 is an empty
// cell, not an error.
func (c *Client) Fetch(ctx context.Context, collection string, address domain.CellAddress) ([]domain.RawElement, error) {
	if address == "" {
		address = domain.RootAddress
	}
	u := fmt.Sprintf("%s/collections/%s/sets/%s", c.baseURL, url.PathEscape(collection), url.PathEscape(string(address)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Collection: collection, Address: address, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &domain.FetchError{
			Collection: collection,
			Address:    address,
			Err:        fmt.Errorf("index API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
		}
	}

	var wire []element
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, &domain.FetchError{Collection: collection, Address: address, Err: fmt.Errorf("decode response: %w", err)}
	}

	out := make([]domain.RawElement, 0, len(wire))
	for _, el := range wire {
		raw, ok := el.toDomain()
		if !ok {
			c.logger.Warn("ignoring element of unknown type", "type", el.Type, "hash", el.Hash, "address", address)
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

// Submit inserts one item.
func (c *Client) Submit(ctx context.Context, s domain.Submission) error {
	body, err := json.Marshal(itemRequest{
		Parent:  s.Parent,
		Hash:    s.Address,
		Metrics: s.Metrics,
		ID:      s.Payload,
		Nonce:   s.ID,
	})
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}

	u := fmt.Sprintf("%s/collections/%s/items", c.baseURL, url.PathEscape(s.Collection))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.SubmissionError{Collection: s.Collection, Address: s.Address, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &domain.SubmissionError{
			Collection: s.Collection,
			Address:    s.Address,
			Err:        fmt.Errorf("index API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg)),
		}
	}
	return nil
}

// Index store wire types.

type element struct {
	Type    string    `json:"type"` // "item" or "set"
	Hash    string    `json:"hash"`
	ID      string    `json:"id,omitempty"`
	Count   int       `json:"count,omitempty"`
	Metrics []float64 `json:"metrics,omitempty"`
}

func (e element) toDomain() (domain.RawElement, bool) {
	switch e.Type {
	case "item":
		return domain.NewItem(domain.CellAddress(e.Hash), e.ID), true
	case "set", "area":
		return domain.NewAggregate(domain.CellAddress(e.Hash), e.Count, e.Metrics), true
	default:
		return domain.RawElement{}, false
	}
}

type itemRequest struct {
	Parent  domain.CellAddress `json:"parent"`
	Hash    domain.CellAddress `json:"hash"`
	Metrics []float64          `json:"metrics"`
	ID      string             `json:"id"`
	Nonce   string             `json:"nonce"`
}
