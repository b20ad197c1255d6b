package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	rewriteSystemPrompt = "You are an editor for a technology blog. Rewrite the " +
		"article you are given in your own words as clean HTML paragraphs " +
		"(<p> tags only, no headings, no markdown, no code fences). Keep every " +
		"fact, drop any boilerplate such as subscription prompts or share " +
		"buttons, and do not invent information that is not in the source."

	labelSystemPrompt = "You are a metadata assistant for a blog. Answer with " +
		"exactly what is asked for and nothing else."

	maxSourceRunes = 6000
)

// Client talks to the chat-completion API for article rewriting and for
// best-effort metadata generation.
type Client struct {
	client *openai.Client
	model  string
	logger *log.Logger
}

// NewClient builds a rewrite client. The API key is validated at startup, so
// an empty key is not handled here.
func NewClient(apiKey, model, baseURL string, logger *log.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

// Rewrite turns the scraped article into a fresh HTML body. An empty content
// string is allowed; the model then works from the title alone.
func (c *Client) Rewrite(ctx context.Context, title, content string) (string, error) {
	user := fmt.Sprintf("Title: %s\n\nSource article:\n%s", title, trimText(content, maxSourceRunes))
	if strings.TrimSpace(content) == "" {
		user = fmt.Sprintf("Title: %s\n\nThe source article could not be retrieved. Write a short original post about the topic suggested by the title.", title)
	}
	out, err := c.complete(ctx, rewriteSystemPrompt, user)
	if err != nil {
		return "", err
	}
	body := stripCodeFence(out)
	if strings.TrimSpace(body) == "" {
		return "", errors.New("model returned an empty rewrite")
	}
	return body, nil
}

// AltText asks for short image alt text for a post with the given title.
func (c *Client) AltText(ctx context.Context, title string) (string, error) {
	out, err := c.complete(ctx, labelSystemPrompt,
		fmt.Sprintf("Write alt text (under 12 words, plain text) for the cover image of a post titled: %s", title))
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(stripCodeFence(out)), `"`), nil
}

// Caption asks for a one-line caption for the cover image.
func (c *Client) Caption(ctx context.Context, title string) (string, error) {
	out, err := c.complete(ctx, labelSystemPrompt,
		fmt.Sprintf("Write a one-line caption (plain text) for the cover image of a post titled: %s", title))
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(stripCodeFence(out)), `"`), nil
}

// Tags asks for a small set of topical labels. The response must be a JSON
// string array; anything else is an error and the caller falls back to no
// tags.
func (c *Client) Tags(ctx context.Context, title, content string) ([]string, error) {
	out, err := c.complete(ctx, labelSystemPrompt,
		fmt.Sprintf("Return a JSON array of 3 to 5 short topical tags for this post. No other text.\nTitle: %s\nExcerpt: %s",
			title, trimText(content, 800)))
	if err != nil {
		return nil, err
	}
	cleaned := stripCodeFence(out)
	var tags []string
	if err := json.Unmarshal([]byte(cleaned), &tags); err != nil {
		c.logger.Printf("failed to parse tags response, content=%q, err=%v", cleaned, err)
		return nil, fmt.Errorf("parse tags response: %w", err)
	}
	return tags, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned by the model")
	}
	return resp.Choices[0].Message.Content, nil
}

func trimText(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max])
}

// stripCodeFence removes a wrapping markdown fence the model sometimes adds.
func stripCodeFence(s string) string {
	c := strings.TrimSpace(s)
	if strings.HasPrefix(c, "```") {
		if idx := strings.Index(c, "\n"); idx != -1 {
			c = c[idx+1:]
		}
		c = strings.TrimSuffix(strings.TrimSpace(c), "```")
		c = strings.TrimSpace(c)
	}
	return c
}
