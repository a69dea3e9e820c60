package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply string
	err   error
	delay time.Duration
	got   []Message
}

func (s *stubCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	s.got = messages
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGatewayChatIncludesHistory(t *testing.T) {
	stub := &stubCompleter{reply: "  Drink more water.  "}
	g := NewGateway(stub, time.Second, quietLogger())

	history := []Message{UserMessage("hi"), AssistantMessage("hello")}
	reply, err := g.Chat(context.Background(), "any tips?", history)
	require.NoError(t, err)
	assert.Equal(t, "Drink more water.", reply)

	require.Len(t, stub.got, 4)
	assert.Equal(t, RoleSystem, stub.got[0].Role)
	assert.Equal(t, "hi", stub.got[1].Text())
	assert.Equal(t, RoleAssistant, stub.got[2].Role)
	assert.Equal(t, RoleUser, stub.got[3].Role)
	assert.Equal(t, "any tips?", stub.got[3].Text())
}

func TestGatewayAnalyzeMeasurementPrompt(t *testing.T) {
	stub := &stubCompleter{reply: "Looks good."}
	g := NewGateway(stub, time.Second, quietLogger())

	_, err := g.AnalyzeMeasurement(context.Background(), 32, 38)
	require.NoError(t, err)

	require.Len(t, stub.got, 2)
	prompt := stub.got[1].Text()
	assert.Contains(t, prompt, "Waist: 32.0 inches")
	assert.Contains(t, prompt, "Hip: 38.0 inches")
	assert.Contains(t, prompt, "WHR: 0.84")
	assert.Contains(t, prompt, "Healthy")
}

func TestGatewayAnalyzeFoodImageSendsDataURL(t *testing.T) {
	stub := &stubCompleter{reply: `[{"name":"Apple"}]`}
	g := NewGateway(stub, time.Second, quietLogger())

	raw, err := g.AnalyzeFoodImage(context.Background(), "aGVsbG8=", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Apple"}]`, raw)

	user := stub.got[len(stub.got)-1]
	assert.False(t, user.TextOnly())
	require.Len(t, user.Parts, 2)
	assert.Equal(t, PartImage, user.Parts[1].Type)
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", user.Parts[1].ImageURL)
}

func TestGatewayAnalyzeFoodImageLabelsMIME(t *testing.T) {
	stub := &stubCompleter{reply: `[{"name":"Apple"}]`}
	g := NewGateway(stub, time.Second, quietLogger())

	_, err := g.AnalyzeFoodImage(context.Background(), "iVBORw0=", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,iVBORw0=", stub.got[len(stub.got)-1].Parts[1].ImageURL)

	_, err = g.AnalyzeFoodImage(context.Background(), "aGVsbG8=", "")
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,aGVsbG8=", stub.got[len(stub.got)-1].Parts[1].ImageURL)
}

func TestGatewayMealPlanAndExercisePrompts(t *testing.T) {
	stub := &stubCompleter{reply: "plan"}
	g := NewGateway(stub, time.Second, quietLogger())

	_, err := g.MealPlan(context.Background(), 0.9, 1800, "")
	require.NoError(t, err)
	prompt := stub.got[1].Text()
	assert.Contains(t, prompt, "1800 kcal")
	assert.Contains(t, prompt, "Dietary preferences: None")

	_, err = g.ExerciseRecommendations(context.Background(), 0.9, "")
	require.NoError(t, err)
	assert.Contains(t, stub.got[1].Text(), "beginner fitness level")
}

func TestGatewayErrorsAreUnavailable(t *testing.T) {
	tests := []struct {
		name string
		stub *stubCompleter
	}{
		{name: "backend error", stub: &stubCompleter{err: errors.New("status 500")}},
		{name: "empty content", stub: &stubCompleter{reply: "   "}},
		{name: "timeout", stub: &stubCompleter{reply: "late", delay: time.Second}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(tt.stub, 50*time.Millisecond, quietLogger())
			_, err := g.Chat(context.Background(), "hi", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestGatewayRejectsBadInput(t *testing.T) {
	g := NewGateway(&stubCompleter{reply: "x"}, time.Second, quietLogger())

	_, err := g.AnalyzeMeasurement(context.Background(), 30, 0)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = g.AnalyzeFoodImage(context.Background(), " ", "image/png")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMessageText(t *testing.T) {
	m := Message{Role: RoleUser, Parts: []Part{TextPart("a"), ImagePart("data:x"), TextPart("b")}}
	assert.Equal(t, "a\nb", m.Text())
	assert.False(t, m.TextOnly())
	assert.True(t, UserMessage("x").TextOnly())
	assert.True(t, strings.HasPrefix(FallbackNoFood, "No food"))
}
