package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/nutrition"
	"github.com/vbonduro/whrtrack/internal/watch"
)

// mealRepository is the subset of store.MealStore that MealService requires.
type mealRepository interface {
	Create(ctx context.Context, m domain.Meal) (*domain.Meal, error)
	GetByID(ctx context.Context, id int64) (*domain.Meal, error)
	Recent(ctx context.Context, limit int) ([]*domain.Meal, error)
	InRange(ctx context.Context, start, end time.Time) ([]*domain.Meal, error)
	Watch(ctx context.Context, limit int) *watch.Subscription[[]*domain.Meal]
	WatchRange(ctx context.Context, start, end time.Time) *watch.Subscription[[]*domain.Meal]
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

type MealService struct {
	store  mealRepository
	prefs  preferenceReader
	logger *slog.Logger
	now    func() time.Time
	loc    *time.Location
}

func NewMealService(store mealRepository, prefs preferenceReader, logger *slog.Logger) *MealService {
	return &MealService{
		store:  store,
		prefs:  prefs,
		logger: logger,
		now:    time.Now,
		loc:    time.Local,
	}
}

// ManualMeal is a single food entered by hand.
type ManualMeal struct {
	Name     string          `json:"name"`
	Calories int             `json:"calories"`
	Protein  int             `json:"protein"`
	Carbs    int             `json:"carbs"`
	Fat      int             `json:"fat"`
	MealType domain.MealType `json:"meal_type"`
}

// Save aggregates items into a meal stamped now. An empty mealType is
// derived from the local hour.
func (s *MealService) Save(ctx context.Context, items []domain.FoodItem, mealType domain.MealType) (*domain.Meal, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if mealType != "" {
		if _, ok := domain.ParseMealType(string(mealType)); !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMealType, mealType)
		}
	}

	normalized := make([]domain.FoodItem, len(items))
	for i, it := range items {
		it, err := normalizeItem(it)
		if err != nil {
			return nil, err
		}
		normalized[i] = it
	}

	itemsJSON, err := nutrition.EncodeItems(normalized)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	totals := nutrition.Aggregate(normalized)
	m, err := s.store.Create(ctx, domain.Meal{
		Timestamp:     now,
		MealType:      nutrition.ResolveMealType(mealType, now),
		TotalCalories: totals.Calories,
		TotalProtein:  totals.Protein,
		TotalCarbs:    totals.Carbs,
		TotalFat:      totals.Fat,
		ItemsJSON:     itemsJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}
	s.logger.Info("meal saved", "id", m.ID, "meal_type", m.MealType, "items", len(normalized), "calories", m.TotalCalories)
	return m, nil
}

// SaveManual stores a one-item meal from hand-entered values.
func (s *MealService) SaveManual(ctx context.Context, in ManualMeal) (*domain.Meal, error) {
	return s.Save(ctx, []domain.FoodItem{{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Calories: in.Calories,
		Protein:  in.Protein,
		Carbs:    in.Carbs,
		Fat:      in.Fat,
		Quantity: 1.0,
	}}, in.MealType)
}

func normalizeItem(it domain.FoodItem) (domain.FoodItem, error) {
	it.Name = strings.TrimSpace(it.Name)
	if it.Name == "" {
		return it, fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if it.Calories < 0 || it.Protein < 0 || it.Carbs < 0 || it.Fat < 0 {
		return it, fmt.Errorf("%w: %s has negative nutrition values", ErrInvalidItem, it.Name)
	}
	if it.Calories > nutrition.MaxPerUnit || it.Protein > nutrition.MaxPerUnit ||
		it.Carbs > nutrition.MaxPerUnit || it.Fat > nutrition.MaxPerUnit {
		return it, fmt.Errorf("%w: %s has nutrition values above %d", ErrInvalidItem, it.Name, nutrition.MaxPerUnit)
	}
	if math.IsNaN(it.Quantity) || it.Quantity < 0 || it.Quantity > nutrition.MaxQuantity {
		return it, fmt.Errorf("%w: %s quantity must be between 0 and %g", ErrInvalidItem, it.Name, nutrition.MaxQuantity)
	}
	if it.Quantity == 0 {
		it.Quantity = 1.0
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	return it, nil
}

func (s *MealService) Get(ctx context.Context, id int64) (*domain.Meal, error) {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("meal %d: %w", id, ErrNotFound)
	}
	return m, nil
}

// Items decodes the food items stored on a meal.
func (s *MealService) Items(ctx context.Context, id int64) ([]domain.FoodItem, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return nutrition.DecodeItems(m.ItemsJSON)
}

// Recent returns up to limit meals, newest first; limit <= 0 returns all.
func (s *MealService) Recent(ctx context.Context, limit int) ([]*domain.Meal, error) {
	return s.store.Recent(ctx, limit)
}

func (s *MealService) All(ctx context.Context) ([]*domain.Meal, error) {
	return s.store.Recent(ctx, 0)
}

// InRange returns meals with start <= timestamp <= end, newest first.
func (s *MealService) InRange(ctx context.Context, start, end time.Time) ([]*domain.Meal, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}
	return s.store.InRange(ctx, start, end)
}

func (s *MealService) Watch(ctx context.Context, limit int) *watch.Subscription[[]*domain.Meal] {
	return s.store.Watch(ctx, limit)
}

func (s *MealService) WatchRange(ctx context.Context, start, end time.Time) (*watch.Subscription[[]*domain.Meal], error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}
	return s.store.WatchRange(ctx, start, end), nil
}

func (s *MealService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("meal deleted", "id", id)
	return nil
}

func (s *MealService) DeleteAll(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return err
	}
	s.logger.Info("all meals deleted")
	return nil
}

// DailyTotals rolls every stored meal up by local calendar day.
func (s *MealService) DailyTotals(ctx context.Context) ([]nutrition.DaySummary, error) {
	meals, err := s.store.Recent(ctx, 0)
	if err != nil {
		return nil, err
	}
	return nutrition.DailyTotals(meals, s.loc), nil
}

// CalorieProgress totals the meals eaten since the start of the preferred
// period against the calorie goal.
func (s *MealService) CalorieProgress(ctx context.Context) (nutrition.Progress, error) {
	prefs := s.prefs.Current()
	now := s.now().In(s.loc)
	since := nutrition.PeriodStart(prefs.CaloriePeriod, now)

	meals, err := s.store.InRange(ctx, since, now)
	if err != nil {
		return nutrition.Progress{}, fmt.Errorf("failed to load meals for progress: %w", err)
	}
	return nutrition.ComputeProgress(prefs, since, meals), nil
}
