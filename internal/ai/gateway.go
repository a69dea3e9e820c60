package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultTimeout bounds a single completion when none is configured.
const DefaultTimeout = 30 * time.Second

// Gateway builds prompts for each coaching use case and sends them to a
// Completer. Every failure is reported as ErrUnavailable.
type Gateway struct {
	backend Completer
	timeout time.Duration
	logger  *slog.Logger
}

func NewGateway(backend Completer, timeout time.Duration, logger *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{backend: backend, timeout: timeout, logger: logger}
}

// Chat sends message after the prior conversation turns.
func (g *Gateway) Chat(ctx context.Context, message string, history []Message) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, SystemMessage(coachSystemPrompt))
	for _, m := range history {
		if m.Role == RoleSystem {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, UserMessage(message))
	return g.complete(ctx, "chat", messages)
}

func (g *Gateway) AnalyzeMeasurement(ctx context.Context, waist, hip float64) (string, error) {
	if hip <= 0 {
		return "", fmt.Errorf("%w: analyze measurement: hip must be positive", ErrUnavailable)
	}
	return g.complete(ctx, "analyze measurement", []Message{
		SystemMessage(analystSystemPrompt),
		UserMessage(measurementPrompt(waist, hip, waist/hip)),
	})
}

// AnalyzeFoodImage sends a base64 image with FoodImagePrompt and returns the
// raw reply. mimeType labels the data URL; empty means image/jpeg.
func (g *Gateway) AnalyzeFoodImage(ctx context.Context, base64Image, mimeType string) (string, error) {
	if strings.TrimSpace(base64Image) == "" {
		return "", fmt.Errorf("%w: analyze food image: empty image", ErrUnavailable)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return g.complete(ctx, "analyze food image", []Message{
		SystemMessage(foodSystemPrompt),
		{Role: RoleUser, Parts: []Part{
			TextPart(FoodImagePrompt),
			ImagePart("data:" + mimeType + ";base64," + base64Image),
		}},
	})
}

func (g *Gateway) MealPlan(ctx context.Context, whr float64, targetCalories int, dietaryPreferences string) (string, error) {
	return g.complete(ctx, "meal plan", []Message{
		SystemMessage(coachSystemPrompt),
		UserMessage(mealPlanPrompt(whr, targetCalories, dietaryPreferences)),
	})
}

func (g *Gateway) ExerciseRecommendations(ctx context.Context, whr float64, fitnessLevel string) (string, error) {
	return g.complete(ctx, "exercise recommendations", []Message{
		SystemMessage(coachSystemPrompt),
		UserMessage(exercisePrompt(whr, fitnessLevel)),
	})
}

func (g *Gateway) complete(ctx context.Context, op string, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.backend.Complete(ctx, messages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			g.logger.Warn("ai request timed out", "op", op, "timeout", g.timeout)
		} else {
			g.logger.Warn("ai request failed", "op", op, "error", err)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.logger.Warn("ai returned empty content", "op", op)
		return "", fmt.Errorf("%w: %s: empty content", ErrUnavailable, op)
	}

	g.logger.Debug("ai request completed", "op", op, "duration_ms", time.Since(start).Milliseconds())
	return text, nil
}
