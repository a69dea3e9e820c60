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

type MeasurementStore struct {
	db  *sql.DB
	hub *watch.Hub
}

func NewMeasurementStore(db *sql.DB) *MeasurementStore {
	return &MeasurementStore{db: db, hub: watch.NewHub()}
}

const measurementColumns = `id, timestamp, waist_inches, hip_inches, whr_value`

func (s *MeasurementStore) Create(ctx context.Context, m domain.Measurement) (*domain.Measurement, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO measurements (timestamp, waist_inches, hip_inches, whr_value) VALUES (?, ?, ?, ?)
	`, m.Timestamp.UnixMilli(), m.WaistInches, m.HipInches, m.WHR)
	if err != nil {
		return nil, fmt.Errorf("failed to create measurement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.hub.Notify()

	return s.GetByID(ctx, id)
}

func (s *MeasurementStore) GetByID(ctx context.Context, id int64) (*domain.Measurement, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+measurementColumns+` FROM measurements WHERE id = ?`, id)
	m, err := scanMeasurement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement: %w", err)
	}
	return m, nil
}

// Recent returns up to limit measurements, newest first. A limit of zero or
// less returns every measurement.
func (s *MeasurementStore) Recent(ctx context.Context, limit int) ([]*domain.Measurement, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+measurementColumns+` FROM measurements
		ORDER BY timestamp DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	measurements := []*domain.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		measurements = append(measurements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measurements: %w", err)
	}

	return measurements, nil
}

// Watch streams Recent(limit) now and after every change to the table.
func (s *MeasurementStore) Watch(ctx context.Context, limit int) *watch.Subscription[[]*domain.Measurement] {
	return watch.Watch(ctx, s.hub, func(ctx context.Context) ([]*domain.Measurement, error) {
		return s.Recent(ctx, limit)
	})
}

// Delete removes the measurement with id. Deleting a missing row is a no-op.
func (s *MeasurementStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM measurements WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
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

func (s *MeasurementStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM measurements`); err != nil {
		return fmt.Errorf("failed to delete measurements: %w", err)
	}
	s.hub.Notify()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeasurement(row rowScanner) (*domain.Measurement, error) {
	m := &domain.Measurement{}
	var ts int64
	if err := row.Scan(&m.ID, &ts, &m.WaistInches, &m.HipInches, &m.WHR); err != nil {
		return nil, err
	}
	m.Timestamp = time.UnixMilli(ts)
	return m, nil
}
