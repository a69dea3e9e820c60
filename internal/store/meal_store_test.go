package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/whrtrack/internal/domain"
)

func meal(ts time.Time, mealType domain.MealType, calories int) domain.Meal {
	return domain.Meal{
		Timestamp:     ts,
		MealType:      mealType,
		TotalCalories: calories,
		TotalProtein:  10,
		TotalCarbs:    20,
		TotalFat:      5,
		ItemsJSON:     `[{"id":"1","name":"Toast","calories":100,"protein":3,"carbs":18,"fat":1,"quantity":1}]`,
	}
}

func TestMealStoreCreate(t *testing.T) {
	store := NewMealStore(openTestDB(t))
	ctx := context.Background()
	ts := time.UnixMilli(1760000000456)

	m, err := store.Create(ctx, meal(ts, domain.MealLunch, 381))
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, ts.UnixMilli(), m.Timestamp.UnixMilli())
	assert.Equal(t, domain.MealLunch, m.MealType)
	assert.Equal(t, 381, m.TotalCalories)
	assert.Equal(t, 10, m.TotalProtein)
	assert.Equal(t, 20, m.TotalCarbs)
	assert.Equal(t, 5, m.TotalFat)
	assert.Contains(t, m.ItemsJSON, "Toast")
}

func TestMealStoreRecent(t *testing.T) {
	store := NewMealStore(openTestDB(t))
	ctx := context.Background()
	base := time.UnixMilli(1760000000000)

	for i := 0; i < 4; i++ {
		_, err := store.Create(ctx, meal(base.Add(time.Duration(i)*time.Minute), domain.MealSnack, 100*(i+1)))
		require.NoError(t, err)
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 400, recent[0].TotalCalories)
	assert.Equal(t, 300, recent[1].TotalCalories)

	all, err := store.Recent(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestMealStoreInRange(t *testing.T) {
	store := NewMealStore(openTestDB(t))
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2026, 10, d, 12, 0, 0, 0, time.UTC) }

	for d := 15; d <= 19; d++ {
		_, err := store.Create(ctx, meal(day(d), domain.MealLunch, d))
		require.NoError(t, err)
	}

	meals, err := store.InRange(ctx, day(16), day(18))
	require.NoError(t, err)
	require.Len(t, meals, 3)
	assert.Equal(t, 18, meals[0].TotalCalories)
	assert.Equal(t, 17, meals[1].TotalCalories)
	assert.Equal(t, 16, meals[2].TotalCalories)

	none, err := store.InRange(ctx, day(20), day(25))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMealStoreDeleteIdempotent(t *testing.T) {
	store := NewMealStore(openTestDB(t))
	ctx := context.Background()

	m, err := store.Create(ctx, meal(time.Now(), domain.MealDinner, 500))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, m.ID))
	assert.NoError(t, store.Delete(ctx, m.ID))

	got, err := store.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMealStoreDeleteAll(t *testing.T) {
	store := NewMealStore(openTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, meal(time.Now(), domain.MealDinner, 500))
	require.NoError(t, err)
	_, err = store.Create(ctx, meal(time.Now(), domain.MealSnack, 150))
	require.NoError(t, err)

	require.NoError(t, store.DeleteAll(ctx))

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMealStoreWatch(t *testing.T) {
	store := NewMealStore(openTestDB(t))
	ctx := context.Background()

	sub := store.Watch(ctx, 10)
	defer sub.Close()
	assert.Empty(t, nextSnapshot(t, sub))

	m, err := store.Create(ctx, meal(time.Now(), domain.MealBreakfast, 320))
	require.NoError(t, err)
	snap := nextSnapshot(t, sub)
	require.Len(t, snap, 1)
	assert.Equal(t, m.ID, snap[0].ID)

	require.NoError(t, store.DeleteAll(ctx))
	assert.Empty(t, nextSnapshot(t, sub))
}

func TestMealStoreWatchRange(t *testing.T) {
	store := NewMealStore(openTestDB(t))
	ctx := context.Background()
	start := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Millisecond)

	sub := store.WatchRange(ctx, start, end)
	defer sub.Close()
	assert.Empty(t, nextSnapshot(t, sub))

	_, err := store.Create(ctx, meal(start.Add(8*time.Hour), domain.MealBreakfast, 300))
	require.NoError(t, err)
	assert.Len(t, nextSnapshot(t, sub), 1)

	// Outside the range: snapshot is re-sent but unchanged.
	_, err = store.Create(ctx, meal(start.Add(-time.Hour), domain.MealSnack, 90))
	require.NoError(t, err)
	assert.Len(t, nextSnapshot(t, sub), 1)
}
