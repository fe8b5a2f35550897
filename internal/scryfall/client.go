package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

var (
	// ErrAPI marks transport failures and non-2xx responses from the card service.
	ErrAPI = errors.New("card service request failed")
	// ErrDecode marks responses that are not a collection list.
	ErrDecode = errors.New("card service response could not be decoded")
)

// MaxBatchSize is the most identifiers /cards/collection accepts per request.
const MaxBatchSize = 75

const collectionPath = "/cards/collection"

// HTTPDoer describes the HTTP client used by the resolver.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	BatchSize  int
	BatchPause time.Duration
	UserAgent  string
	HTTPClient HTTPDoer
}

// Client resolves identifiers against the Scryfall collection endpoint.
type Client struct {
	endpoint  string
	batchSize int
	pause     time.Duration
	userAgent string
	client    HTTPDoer
	wait      func(ctx context.Context, d time.Duration) error
}

// NewClient builds a resolver. Batch sizes outside 1..MaxBatchSize are clamped.
func NewClient(opts Options) *Client {
	size := opts.BatchSize
	if size <= 0 || size > MaxBatchSize {
		size = MaxBatchSize
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		endpoint:  strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/") + collectionPath,
		batchSize: size,
		pause:     opts.BatchPause,
		userAgent: opts.UserAgent,
		client:    httpClient,
		wait:      sleep,
	}
}

// Batches splits identifiers into consecutive groups of at most size entries.
func Batches(ids []Identifier, size int) [][]Identifier {
	if size <= 0 {
		size = MaxBatchSize
	}
	batches := make([][]Identifier, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

// FetchCollection resolves every identifier, one request per batch in order,
// pausing between batches. Responses are returned in request order.
func (c *Client) FetchCollection(ctx context.Context, ids []Identifier) ([]CollectionResponse, error) {
	batches := Batches(ids, c.batchSize)
	responses := make([]CollectionResponse, 0, len(batches))
	for i, batch := range batches {
		if i > 0 && c.pause > 0 {
			if err := c.wait(ctx, c.pause); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrAPI, err)
			}
		}
		log.Printf("scryfall: resolving batch %d/%d (%d identifiers)", i+1, len(batches), len(batch))
		resp, err := c.fetchBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i+1, err)
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (c *Client) fetchBatch(ctx context.Context, batch []Identifier) (CollectionResponse, error) {
	payload, err := json.Marshal(struct {
		Identifiers []Identifier `json:"identifiers"`
	}{Identifiers: batch})
	if err != nil {
		return CollectionResponse{}, fmt.Errorf("%w: encode identifiers: %w", ErrAPI, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return CollectionResponse{}, fmt.Errorf("%w: build request: %w", ErrAPI, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return CollectionResponse{}, fmt.Errorf("%w: %w", ErrAPI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return CollectionResponse{}, fmt.Errorf("%w: read response: %w", ErrAPI, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Details != "" {
			return CollectionResponse{}, fmt.Errorf("%w: status %d: %s", ErrAPI, resp.StatusCode, apiErr.Details)
		}
		return CollectionResponse{}, fmt.Errorf("%w: status %d", ErrAPI, resp.StatusCode)
	}

	var out CollectionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return CollectionResponse{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if out.Object != "list" {
		return CollectionResponse{}, fmt.Errorf("%w: unexpected object %q", ErrDecode, out.Object)
	}
	return out, nil
}

// SaveResponses writes the raw batch responses as indented JSON.
func SaveResponses(path string, responses []CollectionResponse) error {
	data, err := json.MarshalIndent(responses, "", "  ")
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write responses: %w", err)
	}
	return nil
}

// NotFound flattens the not-found identifiers of all responses in order.
func NotFound(responses []CollectionResponse) []Identifier {
	var missing []Identifier
	for _, resp := range responses {
		missing = append(missing, resp.NotFound...)
	}
	return missing
}

// Records flattens the card data of all responses in order.
func Records(responses []CollectionResponse) []Card {
	var cards []Card
	for _, resp := range responses {
		cards = append(cards, resp.Data...)
	}
	return cards
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
