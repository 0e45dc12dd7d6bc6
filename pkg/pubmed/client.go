// Package pubmed fetches per-article publication metadata from the NCBI
// E-utilities API, with bounded-concurrency batching, circuit breaking, and
// resumable staging.
package pubmed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/graphsets/pubmed-temporal/pkg/config"
	"github.com/graphsets/pubmed-temporal/pkg/types"
)

// Client queries the E-utilities ESummary endpoint for PubMed records.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
}

// NewClient creates a client for the given E-utilities base URL. An empty
// apiKey is allowed (lower rate limits apply). When cbConfig.Enabled is set,
// requests run behind a circuit breaker.
func NewClient(baseURL, apiKey string, cbConfig config.CircuitBreakerConfig) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	if cbConfig.Enabled {
		st := gobreaker.Settings{
			Name:        "eutils",
			MaxRequests: cbConfig.MaxRequests,
			Interval:    time.Duration(cbConfig.Interval) * time.Second,
			Timeout:     time.Duration(cbConfig.Timeout) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= cbConfig.ReadyToTripRatio
			},
		}
		c.cb = gobreaker.NewCircuitBreaker(st)
	}

	return c
}

// summaryResponse mirrors the ESummary JSON envelope. The result object maps
// each UID to its document summary, plus a "uids" listing.
type summaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type documentSummary struct {
	UID             string `json:"uid"`
	Title           string `json:"title"`
	PubDate         string `json:"pubdate"`
	EPubDate        string `json:"epubdate"`
	FullJournalName string `json:"fulljournalname"`
}

// Summaries fetches document summaries for a batch of PMIDs. IDs unknown to
// the API are absent from the returned map; the caller decides whether that
// is tolerable.
func (c *Client) Summaries(ctx context.Context, pmids []string) (map[string]*types.Metadata, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	fetch := func() (interface{}, error) {
		return c.fetch(ctx, pmids)
	}

	var (
		result interface{}
		err    error
	)
	if c.cb != nil {
		result, err = c.cb.Execute(fetch)
	} else {
		result, err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return result.(map[string]*types.Metadata), nil
}

func (c *Client) fetch(ctx context.Context, pmids []string) (map[string]*types.Metadata, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("retmode", "json")
	params.Set("id", strings.Join(pmids, ","))
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	endpoint := c.baseURL + "/esummary.fcgi"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build esummary request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("esummary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("esummary returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var envelope summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode esummary response: %w", err)
	}

	out := make(map[string]*types.Metadata, len(pmids))
	for uid, raw := range envelope.Result {
		if uid == "uids" {
			continue
		}
		var doc documentSummary
		if err := json.Unmarshal(raw, &doc); err != nil {
			// Per-UID entries that fail to parse are treated as
			// missing, same as de-indexed articles.
			continue
		}
		date := doc.PubDate
		if date == "" {
			date = doc.EPubDate
		}
		if date == "" {
			continue
		}
		out[uid] = &types.Metadata{
			PMID:    uid,
			Title:   doc.Title,
			Date:    date,
			Journal: doc.FullJournalName,
		}
	}
	return out, nil
}
