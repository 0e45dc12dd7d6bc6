package pubmed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphsets/pubmed-temporal/pkg/config"
)

// summaryHandler serves an ESummary-shaped response for every requested ID
// except those listed in missing.
func summaryHandler(t *testing.T, missing map[string]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		ids := strings.Split(r.Form.Get("id"), ",")

		var entries []string
		var uids []string
		for _, id := range ids {
			if missing[id] {
				continue
			}
			uids = append(uids, fmt.Sprintf("%q", id))
			entries = append(entries, fmt.Sprintf(
				`%q: {"uid": %q, "title": "Paper %s", "pubdate": "2009 May 15", "fulljournalname": "Diabetes"}`,
				id, id, id))
		}

		fmt.Fprintf(w, `{"result": {"uids": [%s], %s}}`,
			strings.Join(uids, ","), strings.Join(entries, ","))
	}
}

func TestSummaries(t *testing.T) {
	srv := httptest.NewServer(summaryHandler(t, nil))
	defer srv.Close()

	client := NewClient(srv.URL, "", config.CircuitBreakerConfig{})

	out, err := client.Summaries(context.Background(), []string{"100", "200"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "2009 May 15", out["100"].Date)
	assert.Equal(t, "Paper 200", out["200"].Title)
	assert.Equal(t, "Diabetes", out["100"].Journal)
}

func TestSummariesMissingID(t *testing.T) {
	srv := httptest.NewServer(summaryHandler(t, map[string]bool{"17874530": true}))
	defer srv.Close()

	client := NewClient(srv.URL, "", config.CircuitBreakerConfig{})

	out, err := client.Summaries(context.Background(), []string{"100", "17874530"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Contains(t, out, "100")
}

func TestSummariesEmptyInput(t *testing.T) {
	client := NewClient("http://unused", "", config.CircuitBreakerConfig{})
	out, err := client.Summaries(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestSummariesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", config.CircuitBreakerConfig{})
	_, err := client.Summaries(context.Background(), []string{"100"})
	assert.Error(t, err)
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	})

	for i := 0; i < 5; i++ {
		_, err := client.Summaries(context.Background(), []string{"100"})
		require.Error(t, err)
	}

	// With every request failing, the breaker must be open by now.
	_, err := client.Summaries(context.Background(), []string{"100"})
	assert.ErrorContains(t, err, "circuit breaker is open")
}
