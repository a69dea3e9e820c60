package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/nutrition"
)

func lunchItems() []domain.FoodItem {
	return []domain.FoodItem{
		{ID: "a", Name: "Grilled Chicken Breast", Calories: 165, Protein: 31, Carbs: 0, Fat: 4, Quantity: 1.0},
		{ID: "b", Name: "Brown Rice", Calories: 216, Protein: 5, Carbs: 45, Fat: 2, Quantity: 1.0},
	}
}

func TestMealServiceSave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.meals.loc = time.UTC
	env.meals.now = fixedClock(time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC))

	m, err := env.meals.Save(ctx, lunchItems(), "")
	require.NoError(t, err)
	assert.Equal(t, 381, m.TotalCalories)
	assert.Equal(t, 36, m.TotalProtein)
	assert.Equal(t, 45, m.TotalCarbs)
	assert.Equal(t, 6, m.TotalFat)
	assert.Equal(t, domain.MealLunch, m.MealType)

	items, err := env.meals.Items(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, lunchItems(), items)
}

func TestMealServiceSaveExplicitType(t *testing.T) {
	env := newTestEnv(t)
	env.meals.loc = time.UTC
	env.meals.now = fixedClock(time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC))

	m, err := env.meals.Save(context.Background(), lunchItems(), domain.MealDinner)
	require.NoError(t, err)
	assert.Equal(t, domain.MealDinner, m.MealType)
}

func TestMealServiceSaveRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.meals.Save(ctx, nil, "")
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = env.meals.Save(ctx, []domain.FoodItem{}, "")
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = env.meals.Save(ctx, []domain.FoodItem{{Name: " "}}, "")
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = env.meals.Save(ctx, []domain.FoodItem{{Name: "Cake", Calories: -5}}, "")
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = env.meals.Save(ctx, lunchItems(), "Brunch")
	assert.ErrorIs(t, err, ErrInvalidMealType)
	assert.NotErrorIs(t, err, ErrInvalidItem)
	assert.EqualError(t, err, `invalid meal type: "Brunch"`)

	all, err := env.meals.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMealServiceSaveRejectsOutOfRangeValues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		item domain.FoodItem
	}{
		{name: "huge quantity", item: domain.FoodItem{Name: "Cake", Calories: 200, Protein: 3, Carbs: 30, Fat: 9, Quantity: 1e300}},
		{name: "infinite quantity", item: domain.FoodItem{Name: "Cake", Calories: 200, Quantity: math.Inf(1)}},
		{name: "nan quantity", item: domain.FoodItem{Name: "Cake", Calories: 200, Quantity: math.NaN()}},
		{name: "quantity over cap", item: domain.FoodItem{Name: "Cake", Calories: 200, Quantity: nutrition.MaxQuantity + 1}},
		{name: "calories over cap", item: domain.FoodItem{Name: "Cake", Calories: nutrition.MaxPerUnit + 1, Quantity: 1}},
		{name: "fat over cap", item: domain.FoodItem{Name: "Cake", Fat: math.MaxInt, Quantity: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.meals.Save(ctx, []domain.FoodItem{tt.item}, domain.MealSnack)
			assert.ErrorIs(t, err, ErrInvalidItem)
		})
	}

	all, err := env.meals.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	m, err := env.meals.Save(ctx, []domain.FoodItem{{
		Name: "Rice", Calories: nutrition.MaxPerUnit, Protein: 1, Carbs: 2, Fat: 3, Quantity: nutrition.MaxQuantity,
	}}, domain.MealSnack)
	require.NoError(t, err)
	assert.Equal(t, nutrition.MaxPerUnit*100, m.TotalCalories)
	assert.Equal(t, 300, m.TotalFat)
}

func TestMealServiceSaveFillsDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m, err := env.meals.Save(ctx, []domain.FoodItem{{Name: "Apple", Calories: 95}}, domain.MealSnack)
	require.NoError(t, err)

	items, err := env.meals.Items(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, 1.0, items[0].Quantity)
	assert.Equal(t, 95, m.TotalCalories)
}

func TestMealServiceSaveManual(t *testing.T) {
	env := newTestEnv(t)

	m, err := env.meals.SaveManual(context.Background(), ManualMeal{
		Name: "Protein Bar", Calories: 210, Protein: 20, Carbs: 22, Fat: 7, MealType: domain.MealSnack,
	})
	require.NoError(t, err)
	assert.Equal(t, 210, m.TotalCalories)
	assert.Equal(t, domain.MealSnack, m.MealType)

	items, err := env.meals.Items(context.Background(), m.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Protein Bar", items[0].Name)
	assert.Len(t, items[0].ID, 36)
}

func TestMealServiceItemsNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.meals.Items(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMealServiceInRange(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.meals.loc = time.UTC

	day := func(d int) time.Time { return time.Date(2026, 10, d, 12, 0, 0, 0, time.UTC) }
	for d := 17; d <= 19; d++ {
		env.meals.now = fixedClock(day(d))
		_, err := env.meals.Save(ctx, lunchItems(), "")
		require.NoError(t, err)
	}

	meals, err := env.meals.InRange(ctx, day(18), day(19))
	require.NoError(t, err)
	assert.Len(t, meals, 2)

	_, err = env.meals.InRange(ctx, day(19), day(18))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = env.meals.WatchRange(ctx, day(19), day(18))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestMealServiceDeleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m, err := env.meals.Save(ctx, lunchItems(), "")
	require.NoError(t, err)

	require.NoError(t, env.meals.Delete(ctx, m.ID))
	require.NoError(t, env.meals.Delete(ctx, m.ID))

	_, err = env.meals.Get(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.meals.DeleteAll(ctx))
}

func TestMealServiceCalorieProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.meals.loc = time.UTC

	yesterday := time.Date(2026, 10, 18, 19, 0, 0, 0, time.UTC)
	today := time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC)

	env.meals.now = fixedClock(yesterday)
	_, err := env.meals.Save(ctx, lunchItems(), "")
	require.NoError(t, err)
	env.meals.now = fixedClock(today)
	_, err = env.meals.Save(ctx, lunchItems(), "")
	require.NoError(t, err)

	progress, err := env.meals.CalorieProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodDaily, progress.Period)
	assert.Equal(t, 2000, progress.Goal)
	assert.Equal(t, 381, progress.Consumed.Calories)
	assert.Equal(t, 1619, progress.Remaining)
	assert.Equal(t, 1, progress.Meals)

	period := domain.PeriodMonthly
	_, err = env.prefs.Update(ctx, PreferencesPatch{CaloriePeriod: &period})
	require.NoError(t, err)

	progress, err = env.meals.CalorieProgress(ctx)
	require.NoError(t, err)
	assert.Equal(t, 762, progress.Consumed.Calories)
	assert.Equal(t, 2, progress.Meals)
}

func TestMealServiceDailyTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.meals.loc = time.UTC

	for _, ts := range []time.Time{
		time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 19, 19, 0, 0, 0, time.UTC),
	} {
		env.meals.now = fixedClock(ts)
		_, err := env.meals.Save(ctx, lunchItems(), "")
		require.NoError(t, err)
	}

	days, err := env.meals.DailyTotals(ctx)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2026-10-19", days[0].Day)
	assert.Equal(t, 2, days[0].Meals)
	assert.Equal(t, 762, days[0].Totals.Calories)
	assert.Equal(t, "2026-10-18", days[1].Day)
}
