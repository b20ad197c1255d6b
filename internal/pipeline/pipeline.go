// Package pipeline drives one processing cycle: refill the work queue from
// the feed when it runs dry, then take the oldest queued item through
// scrape, rewrite and publish. Items leave the queue on their first attempt
// no matter how that attempt ends, so a broken item can never wedge the
// queue.
package pipeline

import (
	"context"
	"fmt"
	"html"
	"log"
	"time"

	"reblogger/internal/feed"
	"reblogger/internal/publish"
	"reblogger/internal/scrape"
	"reblogger/internal/store"
)

// FeedSource lists the current feed entries.
type FeedSource interface {
	Fetch(ctx context.Context) ([]feed.Item, error)
}

// PageScraper fetches article pages and extracts their content.
type PageScraper interface {
	Fetch(ctx context.Context, url string) string
	Extract(markup, url string) scrape.Content
}

// Rewriter produces the rewritten body and best-effort metadata.
type Rewriter interface {
	Rewrite(ctx context.Context, title, content string) (string, error)
	AltText(ctx context.Context, title string) (string, error)
	Caption(ctx context.Context, title string) (string, error)
	Tags(ctx context.Context, title, content string) ([]string, error)
}

// Publisher creates the blog post.
type Publisher interface {
	Publish(ctx context.Context, post publish.Post) (publish.Posted, error)
}

// Pipeline owns one feed-to-blog flow. All collaborators are injected; the
// pipeline has no ambient state beyond the store file.
type Pipeline struct {
	store     *store.Store
	feed      FeedSource
	scraper   PageScraper
	rewriter  Rewriter
	publisher Publisher
	logger    *log.Logger

	refillCap int
	postDelay time.Duration
}

// New wires a pipeline from its collaborators.
func New(st *store.Store, src FeedSource, scraper PageScraper, rw Rewriter, pub Publisher, logger *log.Logger, refillCap int, postDelay time.Duration) *Pipeline {
	return &Pipeline{
		store:     st,
		feed:      src,
		scraper:   scraper,
		rewriter:  rw,
		publisher: pub,
		logger:    logger,
		refillCap: refillCap,
		postDelay: postDelay,
	}
}

// RunCycle performs one full cycle. It never returns an error: every failure
// is resolved within the cycle as a cycle abort, an item eviction or a
// degraded default, and the next scheduled cycle starts from a clean slate.
func (p *Pipeline) RunCycle(ctx context.Context) {
	head, err := p.store.PeekOldest(ctx)
	if err != nil {
		p.logger.Printf("peek queue failed: %v", err)
		return
	}

	if head == nil {
		p.refill(ctx)
		head, err = p.store.PeekOldest(ctx)
		if err != nil {
			p.logger.Printf("peek queue after refill failed: %v", err)
			return
		}
		if head == nil {
			p.logger.Println("queue empty after refill, nothing to process")
			return
		}
	}

	p.process(ctx, head)
}

// refill fetches the feed, drops entries already in the ledger and enqueues
// the rest as one atomic batch, up to the fill cap.
func (p *Pipeline) refill(ctx context.Context) {
	entries, err := p.feed.Fetch(ctx)
	if err != nil {
		p.logger.Printf("feed fetch failed: %v", err)
		return
	}

	candidates := make([]store.QueuedItem, 0, len(entries))
	for _, entry := range entries {
		posted, err := p.anyPosted(ctx, entry.GUID, entry.Link)
		if err != nil {
			p.logger.Printf("ledger check failed for %s: %v", entry.GUID, err)
			continue
		}
		if posted {
			continue
		}
		candidates = append(candidates, store.QueuedItem{
			GUID:        entry.GUID,
			Link:        entry.Link,
			Title:       entry.Title,
			PublishedAt: entry.PublishedAt,
		})
	}

	added, err := p.store.EnqueueBatch(ctx, candidates, p.refillCap)
	if err != nil {
		p.logger.Printf("refill enqueue failed: %v", err)
		return
	}
	p.logger.Printf("refill: %d feed entries, %d candidates, %d enqueued", len(entries), len(candidates), added)
}

// process takes one queued item to a terminal outcome and removes it from
// the queue on the way out.
func (p *Pipeline) process(ctx context.Context, item *store.QueuedItem) {
	// The feed filter ran when this item was enqueued; check again in case
	// it was published through another path while it waited.
	posted, err := p.anyPosted(ctx, item.GUID, item.Link)
	if err != nil {
		p.logger.Printf("ledger recheck failed for %s: %v", item.GUID, err)
		return
	}
	if posted {
		p.logger.Printf("skipping %q, already posted", item.Title)
		p.evict(ctx, item)
		return
	}

	markup := p.scraper.Fetch(ctx, item.Link)
	content := p.scraper.Extract(markup, item.Link)
	if content.Body == "" {
		p.logger.Printf("no article content extracted for %q, rewriting from title", item.Title)
	}

	body, err := p.rewriter.Rewrite(ctx, item.Title, content.Body)
	if err != nil {
		p.logger.Printf("rewrite failed for %q, dropping item: %v", item.Title, err)
		p.evict(ctx, item)
		return
	}

	post := publish.Post{
		Title: item.Title,
		Body:  p.assembleBody(ctx, item.Title, content.ImageURL, body),
	}
	if tags, err := p.rewriter.Tags(ctx, item.Title, content.Body); err != nil {
		p.logger.Printf("tag generation failed for %q, posting without labels: %v", item.Title, err)
	} else {
		post.Labels = tags
	}

	created, err := p.publisher.Publish(ctx, post)
	if err != nil {
		p.logger.Printf("publish failed for %q, dropping item: %v", item.Title, err)
		p.evict(ctx, item)
		return
	}

	p.evict(ctx, item)
	if err := p.store.MarkPosted(ctx, store.PostedRecord{
		GUID:        item.GUID,
		Link:        item.Link,
		Title:       item.Title,
		PublishedAt: item.PublishedAt,
	}); err != nil {
		p.logger.Printf("ledger write failed for %s: %v", item.GUID, err)
		return
	}
	p.logger.Printf("published %q as %s (%s)", item.Title, created.ID, created.URL)

	// Small courtesy pause so back-to-back cycles do not hammer the
	// publishing API.
	select {
	case <-time.After(p.postDelay):
	case <-ctx.Done():
	}
}

// assembleBody prefixes the rewritten body with an image block when a cover
// image was found. Alt text and caption come from the rewriter, falling back
// to the title when those calls fail.
func (p *Pipeline) assembleBody(ctx context.Context, title, imageURL, body string) string {
	if imageURL == "" {
		return body
	}

	alt, err := p.rewriter.AltText(ctx, title)
	if err != nil || alt == "" {
		if err != nil {
			p.logger.Printf("alt text generation failed for %q: %v", title, err)
		}
		alt = title
	}
	caption, err := p.rewriter.Caption(ctx, title)
	if err != nil || caption == "" {
		if err != nil {
			p.logger.Printf("caption generation failed for %q: %v", title, err)
		}
		caption = title
	}

	imageBlock := fmt.Sprintf(
		`<div class="separator" style="clear: both; text-align: center;"><img src=%q alt=%q /><br /><i>%s</i></div>`,
		imageURL, alt, html.EscapeString(caption))
	return imageBlock + "\n" + body
}

func (p *Pipeline) anyPosted(ctx context.Context, guid, link string) (bool, error) {
	if posted, err := p.store.HasBeenPosted(ctx, guid); err != nil || posted {
		return posted, err
	}
	return p.store.HasBeenPosted(ctx, link)
}

func (p *Pipeline) evict(ctx context.Context, item *store.QueuedItem) {
	if err := p.store.Remove(ctx, item.ID); err != nil {
		p.logger.Printf("remove queue item %d failed: %v", item.ID, err)
	}
}
