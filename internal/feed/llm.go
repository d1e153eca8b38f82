package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Generator produces a feed document from a system and user prompt. The
// production implementation is GroqClient; tests plug in a stub.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// GroqClient calls the Groq OpenAI-compatible chat completions endpoint with
// JSON response mode.
type GroqClient struct {
	http  *resty.Client
	model string
}

// NewGroqClient builds a client for baseURL (e.g. https://api.groq.com/openai/v1).
func NewGroqClient(baseURL, apiKey, model string) *GroqClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &GroqClient{http: client, model: model}
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete runs one completion and returns the raw JSON content string.
func (c *GroqClient) Complete(ctx context.Context, system, user string) (string, error) {
	req := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.5,
	}
	req.ResponseFormat.Type = "json_object"

	var out chatCompletionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("internal/feed: groq request failed: %w", err)
	}

	if resp.IsError() {
		if out.Error != nil {
			return "", fmt.Errorf("internal/feed: groq error: %s", out.Error.Message)
		}
		return "", fmt.Errorf("internal/feed: groq returned status %s", resp.Status())
	}

	if len(out.Choices) == 0 {
		return "", fmt.Errorf("internal/feed: groq returned no choices")
	}

	return out.Choices[0].Message.Content, nil
}

// Document is the parsed model output.
type Document struct {
	Headline string `json:"headline"`
	Items    []Item `json:"items"`
}

// Item is one generated feed entry. Recipe items carry the extra fields.
type Item struct {
	ItemType      string   `json:"item_type"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	Tags          []string `json:"tags"`
	DietAlignment string   `json:"diet_alignment,omitempty"`
	Ingredients   []string `json:"ingredients,omitempty"`
	Instructions  []string `json:"instructions,omitempty"`
	SuitableFor   []string `json:"suitable_for,omitempty"`
}

// ParseDocument decodes and minimally validates the model output.
func ParseDocument(content string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return Document{}, fmt.Errorf("internal/feed: model returned invalid JSON: %w", err)
	}
	if len(doc.Items) == 0 {
		return Document{}, fmt.Errorf("internal/feed: model returned no items")
	}
	for _, it := range doc.Items {
		if it.ItemType == "" || it.Title == "" || it.Body == "" {
			return Document{}, fmt.Errorf("internal/feed: item missing required fields")
		}
	}
	if doc.Headline == "" {
		doc.Headline = "Your plan for today"
	}
	return doc, nil
}
