package service

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/vbonduro/whrtrack/internal/ai"
	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/nutrition"
)

// coachGateway is the subset of ai.Gateway that CoachService requires.
type coachGateway interface {
	Chat(ctx context.Context, message string, history []ai.Message) (string, error)
	AnalyzeMeasurement(ctx context.Context, waist, hip float64) (string, error)
	AnalyzeFoodImage(ctx context.Context, base64Image, mimeType string) (string, error)
	MealPlan(ctx context.Context, whr float64, targetCalories int, dietaryPreferences string) (string, error)
	ExerciseRecommendations(ctx context.Context, whr float64, fitnessLevel string) (string, error)
}

// latestReader is the subset of MeasurementService CoachService requires.
type latestReader interface {
	Latest(ctx context.Context) (*domain.Measurement, error)
}

// Reply is AI text for display. Fallback is set when Text is a canned
// message standing in for a failed request.
type Reply struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}

// ScanResult is the outcome of recognizing food in a photo.
type ScanResult struct {
	Items    []domain.FoodItem `json:"items"`
	Totals   domain.Nutrients  `json:"totals"`
	Message  string            `json:"message,omitempty"`
	Fallback bool              `json:"fallback"`
}

// CoachService turns AI gateway errors into fallback replies.
type CoachService struct {
	gateway      coachGateway
	measurements latestReader
	prefs        preferenceReader
	logger       *slog.Logger
}

func NewCoachService(gateway coachGateway, measurements latestReader, prefs preferenceReader, logger *slog.Logger) *CoachService {
	return &CoachService{
		gateway:      gateway,
		measurements: measurements,
		prefs:        prefs,
		logger:       logger,
	}
}

func (s *CoachService) Chat(ctx context.Context, message string, history []ai.Message) Reply {
	text, err := s.gateway.Chat(ctx, message, history)
	if err != nil {
		s.logger.Warn("chat fell back", "error", err)
		return Reply{Text: ai.FallbackChat, Fallback: true}
	}
	return Reply{Text: text}
}

func (s *CoachService) AnalyzeMeasurement(ctx context.Context, waist, hip float64) Reply {
	text, err := s.gateway.AnalyzeMeasurement(ctx, waist, hip)
	if err != nil {
		s.logger.Warn("measurement analysis fell back", "error", err)
		return Reply{Text: ai.FallbackChat, Fallback: true}
	}
	return Reply{Text: text}
}

// ScanFood asks the model for the foods in image, sent as mimeType. Items are
// only returned when the reply parsed into at least one food.
func (s *CoachService) ScanFood(ctx context.Context, image []byte, mimeType string) ScanResult {
	raw, err := s.gateway.AnalyzeFoodImage(ctx, base64.StdEncoding.EncodeToString(image), mimeType)
	if err != nil {
		s.logger.Warn("food scan fell back", "error", err)
		return ScanResult{Items: []domain.FoodItem{}, Message: ai.FallbackImage, Fallback: true}
	}

	parsed := ai.ParseFoodItems(raw)
	if parsed.Kind == ai.ParseEmpty {
		s.logger.Info("food scan found no items", "reply_bytes", len(raw))
		return ScanResult{Items: []domain.FoodItem{}, Message: ai.FallbackNoFood, Fallback: true}
	}

	s.logger.Info("food scan complete", "items", len(parsed.Items))
	return ScanResult{Items: parsed.Items, Totals: nutrition.Aggregate(parsed.Items)}
}

// MealPlan fills a zero whr from the latest reading and a zero
// targetCalories from the calorie goal.
func (s *CoachService) MealPlan(ctx context.Context, whr float64, targetCalories int, dietaryPreferences string) Reply {
	if whr <= 0 {
		whr = s.latestWHR(ctx)
	}
	if targetCalories <= 0 {
		targetCalories = s.prefs.Current().CalorieGoal
	}
	text, err := s.gateway.MealPlan(ctx, whr, targetCalories, dietaryPreferences)
	if err != nil {
		s.logger.Warn("meal plan fell back", "error", err)
		return Reply{Text: ai.FallbackChat, Fallback: true}
	}
	return Reply{Text: text}
}

func (s *CoachService) ExerciseRecommendations(ctx context.Context, whr float64, fitnessLevel string) Reply {
	if whr <= 0 {
		whr = s.latestWHR(ctx)
	}
	text, err := s.gateway.ExerciseRecommendations(ctx, whr, fitnessLevel)
	if err != nil {
		s.logger.Warn("exercise recommendations fell back", "error", err)
		return Reply{Text: ai.FallbackChat, Fallback: true}
	}
	return Reply{Text: text}
}

func (s *CoachService) latestWHR(ctx context.Context) float64 {
	m, err := s.measurements.Latest(ctx)
	if err != nil {
		s.logger.Error("failed to load latest measurement", "error", err)
		return 0
	}
	if m == nil {
		return 0
	}
	return m.WHR
}
