package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/watch"
)

type MealStore struct {
	db  *sql.DB
	hub *watch.Hub
}

func NewMealStore(db *sql.DB) *MealStore {
	return &MealStore{db: db, hub: watch.NewHub()}
}

const mealColumns = `id, timestamp, meal_type, total_calories, total_protein, total_carbs, total_fat, items_json`

func (s *MealStore) Create(ctx context.Context, m domain.Meal) (*domain.Meal, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO meals (timestamp, meal_type, total_calories, total_protein, total_carbs, total_fat, items_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.Timestamp.UnixMilli(), string(m.MealType), m.TotalCalories, m.TotalProtein, m.TotalCarbs, m.TotalFat, m.ItemsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to create meal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.hub.Notify()

	return s.GetByID(ctx, id)
}

func (s *MealStore) GetByID(ctx context.Context, id int64) (*domain.Meal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mealColumns+` FROM meals WHERE id = ?`, id)
	m, err := scanMeal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}
	return m, nil
}

// Recent returns up to limit meals, newest first. A limit of zero or less
// returns every meal.
func (s *MealStore) Recent(ctx context.Context, limit int) ([]*domain.Meal, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.list(ctx, `
		SELECT `+mealColumns+` FROM meals
		ORDER BY timestamp DESC, id DESC LIMIT ?
	`, limit)
}

// InRange returns meals with start <= timestamp <= end, newest first.
func (s *MealStore) InRange(ctx context.Context, start, end time.Time) ([]*domain.Meal, error) {
	return s.list(ctx, `
		SELECT `+mealColumns+` FROM meals
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp DESC, id DESC
	`, start.UnixMilli(), end.UnixMilli())
}

func (s *MealStore) Watch(ctx context.Context, limit int) *watch.Subscription[[]*domain.Meal] {
	return watch.Watch(ctx, s.hub, func(ctx context.Context) ([]*domain.Meal, error) {
		return s.Recent(ctx, limit)
	})
}

func (s *MealStore) WatchRange(ctx context.Context, start, end time.Time) *watch.Subscription[[]*domain.Meal] {
	return watch.Watch(ctx, s.hub, func(ctx context.Context) ([]*domain.Meal, error) {
		return s.InRange(ctx, start, end)
	})
}

// Delete removes the meal with id. Deleting a missing row is a no-op.
func (s *MealStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM meals WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		s.hub.Notify()
	}
	return nil
}

func (s *MealStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM meals`); err != nil {
		return fmt.Errorf("failed to delete meals: %w", err)
	}
	s.hub.Notify()
	return nil
}

func (s *MealStore) list(ctx context.Context, query string, args ...any) ([]*domain.Meal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	meals := []*domain.Meal{}
	for rows.Next() {
		m, err := scanMeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meals: %w", err)
	}

	return meals, nil
}

func scanMeal(row rowScanner) (*domain.Meal, error) {
	m := &domain.Meal{}
	var ts int64
	var mealType string
	if err := row.Scan(&m.ID, &ts, &mealType, &m.TotalCalories, &m.TotalProtein, &m.TotalCarbs, &m.TotalFat, &m.ItemsJSON); err != nil {
		return nil, err
	}
	m.Timestamp = time.UnixMilli(ts)
	m.MealType = domain.MealType(mealType)
	return m, nil
}
