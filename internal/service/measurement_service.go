package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/measure"
	"github.com/vbonduro/whrtrack/internal/watch"
)

// measurementRepository is the subset of store.MeasurementStore that MeasurementService requires.
type measurementRepository interface {
	Create(ctx context.Context, m domain.Measurement) (*domain.Measurement, error)
	GetByID(ctx context.Context, id int64) (*domain.Measurement, error)
	Recent(ctx context.Context, limit int) ([]*domain.Measurement, error)
	Watch(ctx context.Context, limit int) *watch.Subscription[[]*domain.Measurement]
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}

type MeasurementService struct {
	store  measurementRepository
	prefs  preferenceReader
	logger *slog.Logger
	now    func() time.Time
}

func NewMeasurementService(store measurementRepository, prefs preferenceReader, logger *slog.Logger) *MeasurementService {
	return &MeasurementService{
		store:  store,
		prefs:  prefs,
		logger: logger,
		now:    time.Now,
	}
}

// Save records a reading taken now. An empty unit means the preferred unit;
// centimetre readings are stored in inches.
func (s *MeasurementService) Save(ctx context.Context, waist, hip float64, unit domain.MeasurementUnit) (*domain.Measurement, error) {
	if unit == "" {
		unit = s.prefs.Current().MeasurementUnit
	}
	if !unit.Valid() {
		return nil, fmt.Errorf("%w: unknown unit %q", ErrInvalidPreference, unit)
	}
	waist = measure.ToInches(waist, unit)
	hip = measure.ToInches(hip, unit)

	ratio, err := measure.ComputeRatio(waist, hip)
	if err != nil {
		return nil, err
	}

	m, err := s.store.Create(ctx, domain.Measurement{
		Timestamp:   s.now(),
		WaistInches: waist,
		HipInches:   hip,
		WHR:         ratio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save measurement: %w", err)
	}
	s.logger.Info("measurement saved", "id", m.ID, "whr", m.WHR, "risk", measure.Classify(m.WHR))
	return m, nil
}

func (s *MeasurementService) Get(ctx context.Context, id int64) (*domain.Measurement, error) {
	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("measurement %d: %w", id, ErrNotFound)
	}
	return m, nil
}

// Recent returns up to limit readings, newest first; limit <= 0 returns all.
func (s *MeasurementService) Recent(ctx context.Context, limit int) ([]*domain.Measurement, error) {
	return s.store.Recent(ctx, limit)
}

// Latest returns the newest reading, or nil when none exist.
func (s *MeasurementService) Latest(ctx context.Context) (*domain.Measurement, error) {
	recent, err := s.store.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(recent) == 0 {
		return nil, nil
	}
	return recent[0], nil
}

func (s *MeasurementService) Watch(ctx context.Context, limit int) *watch.Subscription[[]*domain.Measurement] {
	return s.store.Watch(ctx, limit)
}

func (s *MeasurementService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("measurement deleted", "id", id)
	return nil
}

func (s *MeasurementService) DeleteAll(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return err
	}
	s.logger.Info("all measurements deleted")
	return nil
}
