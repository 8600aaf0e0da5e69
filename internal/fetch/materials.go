// Package fetch acquires the external inputs of a run: crystal
// structures from the Materials Project API and UPF pseudopotential
// files from the public repositories.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"
)

// DefaultBaseURL is the Materials Project API endpoint.
const DefaultBaseURL = "https://api.materialsproject.org"

// Client queries the Materials Project summary API.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient creates a Materials Project client with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SummaryDoc is the subset of a summary document qeforge consumes. The
// structure is kept raw; internal/structure parses it on demand.
type SummaryDoc struct {
	MaterialID      string          `json:"material_id"`
	EnergyAboveHull float64         `json:"energy_above_hull"`
	IsStable        bool            `json:"is_stable"`
	Structure       json.RawMessage `json:"structure"`
}

type summaryResponse struct {
	Data []SummaryDoc `json:"data"`
}

// MostStable returns the summary document with the lowest energy above
// hull for the formula.
func (c *Client) MostStable(ctx context.Context, formula string) (*SummaryDoc, error) {
	q := url.Values{}
	q.Set("formula", formula)
	q.Set("_fields", "material_id,structure,energy_above_hull,is_stable")

	endpoint := c.BaseURL + "/materials/summary/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build summary request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("materials project request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("materials project: status %d for formula %q", resp.StatusCode, formula)
	}

	var sr summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode summary response: %w", err)
	}
	if len(sr.Data) == 0 {
		return nil, fmt.Errorf("no materials found for formula %q", formula)
	}

	docs := sr.Data
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].EnergyAboveHull < docs[j].EnergyAboveHull
	})
	return &docs[0], nil
}
