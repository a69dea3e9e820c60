package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vbonduro/whrtrack/internal/ai"
)

const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "llava"
)

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Client is an ai.Completer for a local Ollama server's /api/chat endpoint.
type Client struct {
	host   string
	model  string
	client *http.Client
}

func New(host, model string) *Client {
	if host == "" {
		host = DefaultHost
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{},
	}
}

// buildMessages maps parts onto Ollama's content string plus raw base64 images.
func buildMessages(msgs []ai.Message) ([]chatMessage, error) {
	out := make([]chatMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := chatMessage{Role: string(m.Role), Content: m.Text()}
		for _, p := range m.Parts {
			if p.Type != ai.PartImage {
				continue
			}
			_, data, ok := strings.Cut(p.ImageURL, ";base64,")
			if !ok {
				return nil, errors.New("image url is not a base64 data url")
			}
			cm.Images = append(cm.Images, data)
		}
		out = append(out, cm)
	}
	return out, nil
}

func (c *Client) Complete(ctx context.Context, msgs []ai.Message) (string, error) {
	messages, err := buildMessages(msgs)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	payload, err := json.Marshal(chatRequest{Model: c.model, Messages: messages, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close ollama response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var respBody chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return respBody.Message.Content, nil
}
