package forum

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/prestocked/internal/common"
)

const searchPayload = `{
	"kind": "Listing",
	"data": {
		"children": [
			{"kind": "t3", "data": {"id": "p1", "title": "AAPL to the moon", "selftext": "earnings look strong", "permalink": "/r/stocks/comments/p1/aapl", "score": 12}},
			{"kind": "t3", "data": {"id": "p2", "title": "pinned megathread", "stickied": true, "permalink": "/r/stocks/comments/p2/mega", "score": 500}}
		]
	}
}`

const commentsPayload = `[
	{"kind": "Listing", "data": {"children": []}},
	{"kind": "Listing", "data": {"children": [
		{"kind": "t1", "data": {"body": "agreed, buying more", "author": "diamondhands42", "score": 4}},
		{"kind": "t1", "data": {"body": "", "score": 9}},
		{"kind": "more", "data": {}}
	]}}
]`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &common.ForumConfig{
		BaseURL:        srv.URL,
		UserAgent:      "prestocked-test/1.0",
		PostLimit:      25,
		CommentLimit:   10,
		RateLimit:      100,
		RequestTimeout: "5s",
	}
	return NewClient(cfg, arbor.NewLogger()), srv
}

func TestFetchEvidence(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search.json"):
			assert.Contains(t, r.URL.Query().Get("q"), "AAPL")
			w.Write([]byte(searchPayload))
		case strings.HasPrefix(r.URL.Path, "/r/stocks/comments/p1/aapl.json"):
			w.Write([]byte(commentsPayload))
		default:
			http.NotFound(w, r)
		}
	}))

	items, err := client.FetchEvidence(context.Background(), "AAPL")
	require.NoError(t, err)

	// Stickied posts are filtered out.
	require.Len(t, items, 1)
	assert.Equal(t, "AAPL to the moon", items[0].Title)
	assert.Equal(t, "earnings look strong", items[0].Body)
	assert.Equal(t, 12, items[0].Score)

	// Empty-bodied comments and "more" stubs are dropped.
	require.Len(t, items[0].Comments, 1)
	assert.Equal(t, "agreed, buying more", items[0].Comments[0].Body)
	assert.Equal(t, "diamondhands42", items[0].Comments[0].Author)
	assert.Equal(t, 4, items[0].Comments[0].Score)
}

func TestFetchEvidenceSearchFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.FetchEvidence(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestFetchEvidenceCommentFailureIsNotFatal(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/search.json") {
			w.Write([]byte(searchPayload))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))

	items, err := client.FetchEvidence(context.Background(), "AAPL")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Comments)
}

func TestFetchEvidenceNoResults(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kind": "Listing", "data": {"children": []}}`))
	}))

	items, err := client.FetchEvidence(context.Background(), "ZZZZ")
	require.NoError(t, err)
	assert.Empty(t, items)
}
