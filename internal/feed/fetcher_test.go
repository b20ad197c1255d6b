package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
 <channel>
  <title>Example</title>
  <item>
   <title>First</title>
   <link>https://example.com/a</link>
   <guid>tag:example.com,2026:a</guid>
   <pubDate>Mon, 03 Aug 2026 10:00:00 GMT</pubDate>
  </item>
  <item>
   <title>No guid, link fallback</title>
   <link>https://example.com/b</link>
  </item>
  <item>
   <title>No link at all</title>
  </item>
 </channel>
</rss>`

func TestNormalize_GUIDFallbackAndSkip(t *testing.T) {
	parsed, err := gofeed.NewParser().ParseString(sampleRSS)
	require.NoError(t, err)

	items := Normalize(parsed.Items)
	require.Len(t, items, 2, "the link-less entry is dropped")

	assert.Equal(t, "tag:example.com,2026:a", items[0].GUID)
	assert.Equal(t, "https://example.com/a", items[0].Link)
	assert.Equal(t, "First", items[0].Title)
	require.NotNil(t, items[0].PublishedAt)

	// Missing guid falls back to the link.
	assert.Equal(t, "https://example.com/b", items[1].GUID)
	assert.Nil(t, items[1].PublishedAt)
}

func TestFetch_ParsesServedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, "test-agent")
	items, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFetch_ServerErrorIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, "")
	_, err := f.Fetch(context.Background())
	assert.Error(t, err)
}
