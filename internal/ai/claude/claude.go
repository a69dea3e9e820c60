package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/vbonduro/whrtrack/internal/ai"
)

const DefaultModel = "claude-3-5-haiku-latest"

// Replies are short prose or a JSON array of a handful of foods.
const maxTokens = 1024

// Client is an ai.Completer backed by the Anthropic Messages API.
type Client struct {
	client *anthropic.Client
	model  string
}

// New creates a client. baseURL overrides the API root when non-empty.
func New(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = DefaultModel
	}
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &Client{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

// buildRequest folds system messages into the request's system prompt.
func (c *Client) buildRequest(msgs []ai.Message) (anthropic.MessagesRequest, error) {
	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
	}

	var system []string
	for _, m := range msgs {
		if m.Role == ai.RoleSystem {
			system = append(system, m.Text())
			continue
		}

		content := make([]anthropic.MessageContent, 0, len(m.Parts))
		for _, p := range m.Parts {
			switch p.Type {
			case ai.PartText:
				content = append(content, anthropic.NewTextMessageContent(p.Text))
			case ai.PartImage:
				mediaType, data, err := splitDataURL(p.ImageURL)
				if err != nil {
					return req, err
				}
				content = append(content, anthropic.NewImageMessageContent(
					anthropic.NewMessageContentSource(anthropic.MessagesContentSourceTypeBase64, mediaType, data),
				))
			}
		}

		role := anthropic.RoleUser
		if m.Role == ai.RoleAssistant {
			role = anthropic.RoleAssistant
		}
		req.Messages = append(req.Messages, anthropic.Message{Role: role, Content: content})
	}
	req.System = strings.Join(system, "\n\n")

	if len(req.Messages) == 0 {
		return req, errors.New("no user messages")
	}
	return req, nil
}

func (c *Client) Complete(ctx context.Context, msgs []ai.Message) (string, error) {
	req, err := c.buildRequest(msgs)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	for _, blk := range resp.Content {
		if blk.Type == anthropic.MessagesContentTypeText {
			return blk.GetText(), nil
		}
	}
	return "", errors.New("no text content in response")
}

// splitDataURL parses "data:<mime>;base64,<data>".
func splitDataURL(u string) (mediaType, data string, err error) {
	rest, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return "", "", fmt.Errorf("unsupported image url %.32q", u)
	}
	meta, data, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", "", errors.New("image url is not base64 encoded")
	}
	return normaliseMIME(strings.TrimSuffix(meta, ";base64")), data, nil
}

// normaliseMIME maps image types to the ones the API accepts, defaulting to jpeg.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
