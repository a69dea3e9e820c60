package ai

import (
	"context"
	"errors"
)

// ErrUnavailable wraps every failure to obtain a usable completion.
var ErrUnavailable = errors.New("ai service unavailable")

const (
	FallbackChat   = "I'm having trouble connecting right now. Please try again in a moment."
	FallbackImage  = "Unable to analyze image. Please try again."
	FallbackNoFood = "No food items could be identified in this image. Please try again with a clearer picture of your meal."
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image_url"
)

// Part is one piece of message content. ImageURL holds a data URL.
type Part struct {
	Type     PartType
	Text     string
	ImageURL string
}

type Message struct {
	Role  Role
	Parts []Part
}

// Completer is a chat-completion backend.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

func TextPart(text string) Part {
	return Part{Type: PartText, Text: text}
}

func ImagePart(dataURL string) Part {
	return Part{Type: PartImage, ImageURL: dataURL}
}

func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Parts: []Part{TextPart(text)}}
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart(text)}}
}

func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{TextPart(text)}}
}

// Text concatenates the text parts of m.
func (m Message) Text() string {
	var out string
	for _, p := range m.Parts {
		if p.Type != PartText {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// TextOnly reports whether m has no image parts.
func (m Message) TextOnly() bool {
	for _, p := range m.Parts {
		if p.Type == PartImage {
			return false
		}
	}
	return true
}
