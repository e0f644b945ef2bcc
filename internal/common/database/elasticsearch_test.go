package database

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Barlow1/hoots-sub000/internal/common/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCluster struct {
	exists  bool
	created map[string]interface{}
	calls   []string
}

func (f *fakeCluster) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)

		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/mentors":
			if f.exists {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/mentors":
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &f.created)
			_, _ = w.Write([]byte(`{"acknowledged":true,"index":"mentors"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestES(t *testing.T, f *fakeCluster) *ElasticsearchClient {
	t.Helper()
	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{f.server(t).URL}})
	require.NoError(t, err)
	return es
}

func TestEnsureMentorIndex_Creates(t *testing.T) {
	f := &fakeCluster{}
	es := newTestES(t, f)

	created, err := es.EnsureMentorIndex(context.Background(), "mentors")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{"HEAD /mentors", "PUT /mentors"}, f.calls)

	props := f.created["mappings"].(map[string]interface{})["properties"].(map[string]interface{})
	industry := props["industry"].(map[string]interface{})
	assert.Equal(t, "keyword", industry["fields"].(map[string]interface{})["keyword"].(map[string]interface{})["type"])
	assert.Equal(t, "float", props["cost"].(map[string]interface{})["type"])
	assert.Equal(t, "keyword", props["tags"].(map[string]interface{})["type"])
}

func TestEnsureMentorIndex_AlreadyExists(t *testing.T) {
	f := &fakeCluster{exists: true}
	es := newTestES(t, f)

	created, err := es.EnsureMentorIndex(context.Background(), "mentors")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, []string{"HEAD /mentors"}, f.calls)
}

func TestEnsureMentorIndex_Errors(t *testing.T) {
	f := &fakeCluster{}
	es := newTestES(t, f)

	_, err := es.EnsureMentorIndex(context.Background(), "")
	assert.Error(t, err)

	_, err = es.EnsureMentorIndex(context.Background(), "other")
	assert.ErrorContains(t, err, "check index other")
}
