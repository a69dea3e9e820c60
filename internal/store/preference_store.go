package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/watch"
)

const (
	keyCalorieGoal     = "calorie_goal"
	keyCaloriePeriod   = "calorie_period"
	keyMeasurementUnit = "measurement_unit"
)

// PreferenceStore keeps user preferences as key/value rows.
type PreferenceStore struct {
	db  *sql.DB
	hub *watch.Hub
}

func NewPreferenceStore(db *sql.DB) *PreferenceStore {
	return &PreferenceStore{db: db, hub: watch.NewHub()}
}

// Load returns the stored preferences with defaults for any key never set.
func (s *PreferenceStore) Load(ctx context.Context) (domain.Preferences, error) {
	prefs := domain.DefaultPreferences()

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM preferences`)
	if err != nil {
		return prefs, fmt.Errorf("failed to load preferences: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return prefs, fmt.Errorf("failed to scan preference: %w", err)
		}
		switch key {
		case keyCalorieGoal:
			goal, err := strconv.Atoi(value)
			if err != nil {
				slog.Warn("ignoring malformed calorie goal", "value", value)
				continue
			}
			prefs.CalorieGoal = goal
		case keyCaloriePeriod:
			if p := domain.CaloriePeriod(value); p.Valid() {
				prefs.CaloriePeriod = p
			}
		case keyMeasurementUnit:
			if u := domain.MeasurementUnit(value); u.Valid() {
				prefs.MeasurementUnit = u
			}
		}
	}

	if err := rows.Err(); err != nil {
		return prefs, fmt.Errorf("error iterating preferences: %w", err)
	}

	return prefs, nil
}

// Save writes every preference in one transaction.
func (s *PreferenceStore) Save(ctx context.Context, prefs domain.Preferences) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	values := map[string]string{
		keyCalorieGoal:     strconv.Itoa(prefs.CalorieGoal),
		keyCaloriePeriod:   string(prefs.CaloriePeriod),
		keyMeasurementUnit: string(prefs.MeasurementUnit),
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO preferences (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return fmt.Errorf("failed to save preference %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit preferences: %w", err)
	}
	s.hub.Notify()
	return nil
}

func (s *PreferenceStore) Watch(ctx context.Context) *watch.Subscription[domain.Preferences] {
	return watch.Watch(ctx, s.hub, s.Load)
}
