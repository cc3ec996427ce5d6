// Package astrology calls an external birth-chart computation API. It is an
// optional enrichment: every caller must be prepared to continue without it.
package astrology

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("astrology api is not configured")

type BirthData struct {
	Date string  `json:"date"` // YYYY-MM-DD
	Time string  `json:"time"` // HH:MM
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type PlanetPosition struct {
	Planet string  `json:"planet"`
	Sign   string  `json:"sign"`
	Degree float64 `json:"degree"`
	House  int     `json:"house"`
}

type Chart struct {
	Positions []PlanetPosition `json:"positions"`
}

type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) ComputeChart(ctx context.Context, birth BirthData) (*Chart, error) {
	if c.apiURL == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(birth)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("astrology request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("astrology api status %d", resp.StatusCode)
	}

	var chart Chart
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("astrology decode: %w", err)
	}

	return &chart, nil
}

// FormatChart renders a chart as the natural-language block used in prompts.
func FormatChart(name string, chart *Chart) string {
	if chart == nil || len(chart.Positions) == 0 {
		return ""
	}

	parts := make([]string, 0, len(chart.Positions))
	for _, p := range chart.Positions {
		s := fmt.Sprintf("%s in %s (%.1f°)", p.Planet, p.Sign, p.Degree)
		if p.House > 0 {
			s += fmt.Sprintf(", house %d", p.House)
		}
		parts = append(parts, s)
	}

	return fmt.Sprintf("Birth chart for %s: %s.", name, strings.Join(parts, "; "))
}
