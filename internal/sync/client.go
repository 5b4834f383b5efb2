// Package sync refreshes the reference catalogs from the upstream product
// service. The client fetches both catalogs over HTTP; the scheduler runs
// the refresh on an interval and on demand.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/retailops/allocator/internal/catalog"
	"github.com/retailops/allocator/internal/engine"
)

// Client talks to the upstream catalog service. The service exposes two
// collection endpoints under a common base URL:
//
//	GET {base}/items  -> [{"number": "...", "description": "...", "skus": [...]}]
//	GET {base}/stores -> [{"code": "...", "name": "...", "rank": "A"}]
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type itemPayload struct {
	Number      string   `json:"number"`
	Description string   `json:"description"`
	SKUs        []string `json:"skus"`
}

type storePayload struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Rank string `json:"rank"`
}

// FetchSnapshot pulls both catalogs and returns them as one snapshot.
func (c *Client) FetchSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	var items []itemPayload
	if err := c.getJSON(ctx, "/items", &items); err != nil {
		return nil, fmt.Errorf("fetching items: %w", err)
	}
	var stores []storePayload
	if err := c.getJSON(ctx, "/stores", &stores); err != nil {
		return nil, fmt.Errorf("fetching stores: %w", err)
	}

	snap := &catalog.Snapshot{LoadedAt: time.Now()}
	for _, p := range items {
		if strings.TrimSpace(p.Number) == "" {
			continue
		}
		snap.Items = append(snap.Items, engine.CatalogItem{
			Number:      p.Number,
			Description: p.Description,
			SKUs:        p.SKUs,
		})
	}
	for _, p := range stores {
		if strings.TrimSpace(p.Code) == "" {
			continue
		}
		snap.Stores = append(snap.Stores, engine.Store{
			Code: p.Code,
			Name: p.Name,
			Rank: engine.ParseRank(p.Rank),
		})
	}
	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
