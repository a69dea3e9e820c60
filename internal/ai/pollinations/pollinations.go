package pollinations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vbonduro/whrtrack/internal/ai"
)

const (
	DefaultEndpoint = "https://text.pollinations.ai/openai"
	DefaultModel    = "openai"

	// Vision requests need temperature 1.0 on this endpoint.
	temperature = 1.0
)

type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

// message.Content is a string for text-only messages and a []part otherwise.
type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	model   string
	client  *http.Client
	baseURL string
}

func New(endpoint, model string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		model:   model,
		client:  &http.Client{},
		baseURL: endpoint,
	}
}

func buildMessages(msgs []ai.Message) []message {
	out := make([]message, 0, len(msgs))
	for _, m := range msgs {
		if m.TextOnly() {
			out = append(out, message{Role: string(m.Role), Content: m.Text()})
			continue
		}
		parts := make([]part, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch p.Type {
			case ai.PartText:
				parts = append(parts, part{Type: "text", Text: p.Text})
			case ai.PartImage:
				parts = append(parts, part{Type: "image_url", ImageURL: &imageURL{URL: p.ImageURL}})
			}
		}
		out = append(out, message{Role: string(m.Role), Content: parts})
	}
	return out
}

func (c *Client) Complete(ctx context.Context, msgs []ai.Message) (string, error) {
	payload, err := json.Marshal(request{
		Model:       c.model,
		Messages:    buildMessages(msgs),
		Temperature: temperature,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call pollinations: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close pollinations response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("pollinations returned status %d: %s", resp.StatusCode, errBody)
	}

	var respBody response
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(respBody.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	text, err := contentText(respBody.Choices[0].Message.Content)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("no content in response")
	}
	return text, nil
}

// contentText reads message content that is either a string or an array of parts.
func contentText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var parts []part
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", fmt.Errorf("unexpected content shape: %w", err)
	}
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Type == "text" && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n"), nil
}
