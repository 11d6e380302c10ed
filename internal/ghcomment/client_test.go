package ghcomment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deadsnakes/internal/config"
	"deadsnakes/internal/slogutil"
)

func testConfig(apiURL string) config.GitHubConfig {
	return config.GitHubConfig{
		Token:      "tok",
		Repository: "acme/widgets",
		PRNumber:   "42",
		APIURL:     apiURL,
	}
}

func TestUpsertIncompleteConfig(t *testing.T) {
	client := NewClient(config.GitHubConfig{}, slogutil.NewDiscardLogger())
	err := client.Upsert(context.Background(), "body")
	assert.ErrorIs(t, err, ErrIncompleteConfig)
}

func TestUpsertPostsWhenNoPriorComment(t *testing.T) {
	var posted struct {
		method string
		path   string
		body   map[string]string
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widgets/issues/42/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token tok", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `[{"url":"x","body":"unrelated","user":{"login":"someone"}}]`)
		case http.MethodPost:
			posted.method = r.Method
			posted.path = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&posted.body))
			w.WriteHeader(http.StatusCreated)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), slogutil.NewDiscardLogger())
	require.NoError(t, client.Upsert(context.Background(), "## Dead Snakes Report\n\nfindings"))

	assert.Equal(t, http.MethodPost, posted.method)
	assert.Contains(t, posted.body["body"], "Dead Snakes Report")
}

func TestUpsertPatchesExistingComment(t *testing.T) {
	patched := false

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/repos/acme/widgets/issues/42/comments", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		fmt.Fprintf(w, `[
			{"url":"%s/comments/1","body":"chatter","user":{"login":"github-actions[bot]"}},
			{"url":"%s/comments/2","body":"## Dead Snakes Report\nold","user":{"login":"github-actions[bot]"}}
		]`, srv.URL, srv.URL)
	})
	mux.HandleFunc("/comments/2", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		patched = true
		w.WriteHeader(http.StatusOK)
	})

	client := NewClient(testConfig(srv.URL), slogutil.NewDiscardLogger())
	require.NoError(t, client.Upsert(context.Background(), "## Dead Snakes Report\nnew"))
	assert.True(t, patched)
}

func TestUpsertSurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), slogutil.NewDiscardLogger())
	err := client.Upsert(context.Background(), "body")
	assert.Error(t, err)
}
