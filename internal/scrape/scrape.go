package scrape

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Content is what could be extracted from an article page. Both fields may be
// empty; the pipeline degrades rather than failing.
type Content struct {
	Body     string
	ImageURL string
}

// Scraper fetches article pages and extracts their main content.
type Scraper struct {
	client    *http.Client
	userAgent string
	rules     []rule
	logger    *log.Logger
}

// rule pairs a host pattern with a site-specific extractor. Rules are tried
// in order; the first whose pattern matches the page host wins.
type rule struct {
	name       string
	hostSuffix string
	extract    func(doc *goquery.Document) Content
}

// NewScraper creates a scraper with the built-in site rules and a bounded
// request timeout.
func NewScraper(timeout time.Duration, userAgent string, logger *log.Logger) *Scraper {
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		rules:     siteRules(),
		logger:    logger,
	}
}

// Fetch downloads the page and returns its raw markup, or "" on any failure.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		s.logger.Printf("build page request for %s failed: %v", pageURL, err)
		return ""
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Printf("fetch page %s failed: %v", pageURL, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Printf("fetch page %s returned %s", pageURL, resp.Status)
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Printf("read page %s failed: %v", pageURL, err)
		return ""
	}
	return string(body)
}

// Extract pulls the article body and a representative image out of the page
// markup, trying site rules first and falling back to a generic extractor.
func (s *Scraper) Extract(markup, pageURL string) Content {
	if strings.TrimSpace(markup) == "" {
		return Content{}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		s.logger.Printf("parse page %s failed: %v", pageURL, err)
		return Content{}
	}

	host := ""
	if u, err := url.Parse(pageURL); err == nil {
		host = strings.TrimPrefix(u.Hostname(), "www.")
	}

	for _, r := range s.rules {
		if host == r.hostSuffix || strings.HasSuffix(host, "."+r.hostSuffix) {
			if c := r.extract(doc); c.Body != "" {
				return c
			}
			// Rule matched the host but found nothing; let the generic
			// extractor have a try.
			break
		}
	}
	return genericExtract(doc)
}

func siteRules() []rule {
	return []rule{
		{
			name:       "medium",
			hostSuffix: "medium.com",
			extract: func(doc *goquery.Document) Content {
				return Content{
					Body:     selectionHTML(doc.Find("article section")),
					ImageURL: metaImage(doc),
				}
			},
		},
		{
			name:       "substack",
			hostSuffix: "substack.com",
			extract: func(doc *goquery.Document) Content {
				return Content{
					Body:     selectionHTML(doc.Find("div.available-content")),
					ImageURL: metaImage(doc),
				}
			},
		},
		{
			name:       "wordpress",
			hostSuffix: "wordpress.com",
			extract: func(doc *goquery.Document) Content {
				return Content{
					Body:     selectionHTML(doc.Find("div.entry-content")),
					ImageURL: metaImage(doc),
				}
			},
		},
	}
}

// genericExtract takes the og:image plus the first article-like block, else
// the longest paragraph cluster it can find.
func genericExtract(doc *goquery.Document) Content {
	c := Content{ImageURL: metaImage(doc)}

	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	for _, sel := range []string{"article", "main", "div[itemprop='articleBody']", "div.post-content", "div.article-body"} {
		if body := selectionHTML(doc.Find(sel).First()); body != "" {
			c.Body = body
			return c
		}
	}

	// Last resort: the densest run of paragraphs anywhere in the page.
	best := ""
	doc.Find("div").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p").Length() < 2 {
			return
		}
		if html := selectionHTML(s); len(html) > len(best) {
			best = html
		}
	})
	c.Body = best
	return c
}

func metaImage(doc *goquery.Document) string {
	if v, ok := doc.Find("meta[property='og:image']").Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find("meta[name='twitter:image']").Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func selectionHTML(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	html, err := sel.First().Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(html)
}
