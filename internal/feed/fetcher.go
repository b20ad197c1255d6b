package feed

import (
	"context"
	"time"

	"github.com/mmcdole/gofeed"
)

// Item represents a normalized feed entry.
type Item struct {
	GUID        string
	Title       string
	Link        string
	PublishedAt *time.Time
}

// Fetcher pulls and parses a single RSS/Atom feed.
type Fetcher struct {
	feedURL string
	parser  *gofeed.Parser
}

// NewFetcher creates a fetcher for the given feed URL. The user agent is sent
// on every request.
func NewFetcher(feedURL, userAgent string) *Fetcher {
	parser := gofeed.NewParser()
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &Fetcher{
		feedURL: feedURL,
		parser:  parser,
	}
}

// Fetch pulls the feed and returns the normalized entries in feed order.
// Entries without a usable guid or link are dropped.
func (f *Fetcher) Fetch(ctx context.Context) ([]Item, error) {
	feed, err := f.parser.ParseURLWithContext(f.feedURL, ctx)
	if err != nil {
		return nil, err
	}
	return Normalize(feed.Items), nil
}

// Normalize converts parsed entries to Items, deriving a stable guid and
// skipping entries missing a guid or link.
func Normalize(entries []*gofeed.Item) []Item {
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		guid := pickGUID(entry)
		if guid == "" || entry.Link == "" {
			continue
		}
		items = append(items, Item{
			GUID:        guid,
			Title:       entry.Title,
			Link:        entry.Link,
			PublishedAt: entry.PublishedParsed,
		})
	}
	return items
}

// pickGUID prefers the feed-provided guid, then the link, then the title.
func pickGUID(entry *gofeed.Item) string {
	if entry.GUID != "" {
		return entry.GUID
	}
	if entry.Link != "" {
		return entry.Link
	}
	return entry.Title
}
