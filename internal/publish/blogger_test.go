package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		httpClient: srv.Client(),
		blogID:     "blog-1",
		apiBase:    srv.URL,
	}
}

func TestPublish_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/blogs/blog-1/posts/", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "blogger#post", payload["kind"])
		assert.Equal(t, "A title", payload["title"])
		assert.Equal(t, []any{"go", "news"}, payload["labels"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":  "post-123",
			"url": "https://blog.example.com/post-123",
		})
	}))
	defer srv.Close()

	posted, err := newTestClient(srv).Publish(context.Background(), Post{
		Title:  "A title",
		Body:   "<p>body</p>",
		Labels: []string{"go", "news"},
	})
	require.NoError(t, err)
	assert.Equal(t, "post-123", posted.ID)
	assert.Equal(t, "https://blog.example.com/post-123", posted.URL)
}

func TestPublish_NoLabelsOmitsField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, hasLabels := payload["labels"]
		assert.False(t, hasLabels)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "p", "url": "u"})
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Publish(context.Background(), Post{Title: "t", Body: "b"})
	require.NoError(t, err)
}

func TestPublish_NonSuccessStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rateLimitExceeded"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Publish(context.Background(), Post{Title: "t", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
