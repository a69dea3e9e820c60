package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/watch"
)

// preferenceRepository is the subset of store.PreferenceStore that PreferenceService requires.
type preferenceRepository interface {
	Load(ctx context.Context) (domain.Preferences, error)
	Save(ctx context.Context, prefs domain.Preferences) error
	Watch(ctx context.Context) *watch.Subscription[domain.Preferences]
}

// PreferenceService caches preferences in memory. Updates are serialized and
// written through to the store.
type PreferenceService struct {
	store  preferenceRepository
	logger *slog.Logger

	mu      sync.RWMutex
	current domain.Preferences
}

func NewPreferenceService(store preferenceRepository, logger *slog.Logger) *PreferenceService {
	return &PreferenceService{
		store:   store,
		logger:  logger,
		current: domain.DefaultPreferences(),
	}
}

// PreferencesPatch holds the fields to change; nil fields are left alone.
type PreferencesPatch struct {
	CalorieGoal     *int                    `json:"calorie_goal"`
	CaloriePeriod   *domain.CaloriePeriod   `json:"calorie_period"`
	MeasurementUnit *domain.MeasurementUnit `json:"measurement_unit"`
}

// Load reads stored preferences into the cache.
func (s *PreferenceService) Load(ctx context.Context) (domain.Preferences, error) {
	prefs, err := s.store.Load(ctx)
	if err != nil {
		return domain.Preferences{}, err
	}
	s.mu.Lock()
	s.current = prefs
	s.mu.Unlock()
	return prefs, nil
}

func (s *PreferenceService) Current() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *PreferenceService) Update(ctx context.Context, patch PreferencesPatch) (domain.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if patch.CalorieGoal != nil {
		if *patch.CalorieGoal <= 0 {
			return s.current, fmt.Errorf("%w: calorie goal must be positive", ErrInvalidPreference)
		}
		next.CalorieGoal = *patch.CalorieGoal
	}
	if patch.CaloriePeriod != nil {
		if !patch.CaloriePeriod.Valid() {
			return s.current, fmt.Errorf("%w: unknown calorie period %q", ErrInvalidPreference, *patch.CaloriePeriod)
		}
		next.CaloriePeriod = *patch.CaloriePeriod
	}
	if patch.MeasurementUnit != nil {
		if !patch.MeasurementUnit.Valid() {
			return s.current, fmt.Errorf("%w: unknown measurement unit %q", ErrInvalidPreference, *patch.MeasurementUnit)
		}
		next.MeasurementUnit = *patch.MeasurementUnit
	}

	if next == s.current {
		return next, nil
	}
	if err := s.store.Save(ctx, next); err != nil {
		return s.current, fmt.Errorf("failed to update preferences: %w", err)
	}
	s.current = next
	s.logger.Info("preferences updated",
		"calorie_goal", next.CalorieGoal,
		"calorie_period", next.CaloriePeriod,
		"measurement_unit", next.MeasurementUnit,
	)
	return next, nil
}

func (s *PreferenceService) Watch(ctx context.Context) *watch.Subscription[domain.Preferences] {
	return s.store.Watch(ctx)
}
