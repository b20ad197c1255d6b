package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const apiBase = "https://www.googleapis.com/blogger/v3"

// Post is the content to publish.
type Post struct {
	Title  string
	Body   string
	Labels []string
}

// Posted identifies the created blog post.
type Posted struct {
	ID  string
	URL string
}

// Client publishes posts to a single Blogger blog using a refresh-token
// OAuth flow.
type Client struct {
	httpClient *http.Client
	blogID     string
	apiBase    string
}

// NewClient builds a Blogger client. The refresh token is exchanged for
// access tokens automatically on each request.
func NewClient(ctx context.Context, clientID, clientSecret, refreshToken, blogID string) *Client {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"https://www.googleapis.com/auth/blogger"},
	}
	token := &oauth2.Token{RefreshToken: refreshToken}
	return &Client{
		httpClient: conf.Client(ctx, token),
		blogID:     blogID,
		apiBase:    apiBase,
	}
}

// Publish creates a live post and returns its id and URL.
func (c *Client) Publish(ctx context.Context, post Post) (Posted, error) {
	payload := map[string]any{
		"kind":    "blogger#post",
		"title":   post.Title,
		"content": post.Body,
	}
	if len(post.Labels) > 0 {
		payload["labels"] = post.Labels
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Posted{}, fmt.Errorf("marshal post payload: %w", err)
	}

	url := fmt.Sprintf("%s/blogs/%s/posts/", c.apiBase, c.blogID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Posted{}, fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Posted{}, fmt.Errorf("publish request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Posted{}, fmt.Errorf("publish returned %s: %s", resp.Status, snippet)
	}

	var created struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return Posted{}, fmt.Errorf("decode publish response: %w", err)
	}
	return Posted{ID: created.ID, URL: created.URL}, nil
}
