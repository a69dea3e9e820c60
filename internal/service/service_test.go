package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vbonduro/whrtrack/internal/db"
	"github.com/vbonduro/whrtrack/internal/store"
)

type testEnv struct {
	measurements *MeasurementService
	meals        *MealService
	prefs        *PreferenceService
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	logger := quietLogger()
	prefs := NewPreferenceService(store.NewPreferenceStore(d), logger)
	_, err = prefs.Load(context.Background())
	require.NoError(t, err)

	return &testEnv{
		measurements: NewMeasurementService(store.NewMeasurementStore(d), prefs, logger),
		meals:        NewMealService(store.NewMealStore(d), prefs, logger),
		prefs:        prefs,
	}
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
