package searchmentors

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	stderrors "github.com/Barlow1/hoots-sub000/internal/common/errors"
	"github.com/Barlow1/hoots-sub000/internal/common/logger"
	"github.com/Barlow1/hoots-sub000/internal/workers/data-access/search-mentors/queries"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

const searchResponseBody = `{
	"took": 7,
	"hits": {
		"total": {"value": 42, "relation": "eq"},
		"max_score": 3.5,
		"hits": [
			{"_id": "m-1", "_score": 3.5, "_source": {"id": "m-1", "name": "Ada", "industry": "software", "cost": 50, "experience": 10, "tags": ["go"]}},
			{"_id": "m-2", "_score": 1.2, "_source": {"name": "Grace", "industry": "software", "cost": 80}}
		]
	}
}`

type recordedRequest struct {
	Path string
	Body map[string]interface{}
	From string
	Size string
}

// fakeElasticsearch serves canned responses and records the last search.
func fakeElasticsearch(t *testing.T, status int, body string, delay time.Duration) (*elasticsearch.Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Path = r.URL.Path
		rec.From = r.URL.Query().Get("from")
		rec.Size = r.URL.Query().Get("size")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &rec.Body)

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client, rec
}

func newTestHandler(t *testing.T, client *elasticsearch.Client) *Handler {
	return NewHandler(&Config{Timeout: 5 * time.Second, DefaultIndex: "mentors"}, client, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_Success(t *testing.T) {
	client, rec := fakeElasticsearch(t, http.StatusOK, searchResponseBody, 0)
	h := newTestHandler(t, client)

	maxCost := 100.0
	out, err := h.Execute(context.Background(), &Input{
		Query:      "golang",
		Filters:    queries.Filters{Industry: "software", MaxCost: &maxCost},
		Pagination: Pagination{From: 20, Size: 500},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), out.TotalHits)
	assert.Equal(t, 3.5, out.MaxScore)
	assert.Equal(t, int64(7), out.Took)
	require.Len(t, out.Mentors, 2)
	assert.Equal(t, "m-1", out.Mentors[0].ID)
	assert.Equal(t, []string{"go"}, out.Mentors[0].Tags)
	assert.Equal(t, "m-2", out.Mentors[1].ID, "id falls back to the document id")
	assert.Equal(t, 0.0, out.Mentors[1].Experience)

	assert.Equal(t, "/mentors/_search", rec.Path)
	assert.Equal(t, "20", rec.From)
	assert.Equal(t, "100", rec.Size)
	assert.Contains(t, rec.Body, "query")
}

func TestExecute_CustomIndexAndEmptyResult(t *testing.T) {
	client, rec := fakeElasticsearch(t, http.StatusOK, `{"took":1,"hits":{"total":{"value":0},"max_score":null,"hits":[]}}`, 0)
	h := newTestHandler(t, client)

	out, err := h.Execute(context.Background(), &Input{IndexName: "mentors-v2"})
	require.NoError(t, err)
	assert.Equal(t, "/mentors-v2/_search", rec.Path)
	assert.Equal(t, "20", rec.Size)
	assert.NotNil(t, out.Mentors)
	assert.Empty(t, out.Mentors)
	assert.Zero(t, out.MaxScore)
}

// ==========================
// Error Mapping
// ==========================

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		delay    time.Duration
		timeout  time.Duration
		wantCode stderrors.ErrorCode
	}{
		{
			name:     "missing index",
			status:   http.StatusNotFound,
			body:     `{"error":{"type":"index_not_found_exception"},"status":404}`,
			wantCode: stderrors.ErrCodeIndexNotFound,
		},
		{
			name:     "bad query",
			status:   http.StatusBadRequest,
			body:     `{"error":{"type":"parsing_exception"},"status":400}`,
			wantCode: stderrors.ErrCodeSearchQueryFailed,
		},
		{
			name:     "malformed response",
			status:   http.StatusOK,
			body:     `{"hits": [`,
			wantCode: stderrors.ErrCodeSearchQueryFailed,
		},
		{
			name:     "deadline",
			status:   http.StatusOK,
			body:     searchResponseBody,
			delay:    2 * time.Second,
			timeout:  50 * time.Millisecond,
			wantCode: stderrors.ErrCodeSearchTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := fakeElasticsearch(t, tt.status, tt.body, tt.delay)
			h := newTestHandler(t, client)

			ctx := context.Background()
			if tt.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.timeout)
				defer cancel()
			}

			_, err := h.Execute(ctx, &Input{Query: "go"})
			require.Error(t, err)
			assert.True(t, stderrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestExecute_NoIndexConfigured(t *testing.T) {
	client, _ := fakeElasticsearch(t, http.StatusOK, searchResponseBody, 0)
	h := NewHandler(&Config{Timeout: time.Second}, client, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.True(t, stderrors.HasCode(err, stderrors.ErrCodeIndexNotFound))
}
