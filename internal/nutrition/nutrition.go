// Package nutrition aggregates food items into meal totals and rolls meals up
// by day and by calorie-goal period.
package nutrition

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vbonduro/whrtrack/internal/domain"
)

// Limits for a single food item. Keeping perUnit × quantity far below the
// int range makes every floored contribution exact.
const (
	MaxQuantity = 100.0
	MaxPerUnit  = 100000
)

// Aggregate sums floor(perUnit × quantity) over items for each nutrient.
// Every item is floored on its own before it is added.
func Aggregate(items []domain.FoodItem) domain.Nutrients {
	var n domain.Nutrients
	for _, it := range items {
		n.Calories += scaled(it.Calories, it.Quantity)
		n.Protein += scaled(it.Protein, it.Quantity)
		n.Carbs += scaled(it.Carbs, it.Quantity)
		n.Fat += scaled(it.Fat, it.Quantity)
	}
	return n
}

func scaled(perUnit int, quantity float64) int {
	return int(math.Floor(float64(perUnit) * quantity))
}

// ResolveMealType returns explicit when set, otherwise the label for the
// hour of now.
func ResolveMealType(explicit domain.MealType, now time.Time) domain.MealType {
	if explicit != "" {
		return explicit
	}
	switch h := now.Hour(); {
	case h >= 5 && h <= 10:
		return domain.MealBreakfast
	case h >= 11 && h <= 14:
		return domain.MealLunch
	case h >= 15 && h <= 17:
		return domain.MealSnack
	case h >= 18 && h <= 22:
		return domain.MealDinner
	default:
		return domain.MealSnack
	}
}

// EncodeItems serializes items into the JSON array stored on a meal row.
func EncodeItems(items []domain.FoodItem) (string, error) {
	if items == nil {
		items = []domain.FoodItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode food items: %w", err)
	}
	return string(b), nil
}

// DecodeItems is the inverse of EncodeItems.
func DecodeItems(s string) ([]domain.FoodItem, error) {
	items := []domain.FoodItem{}
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("failed to decode food items: %w", err)
	}
	return items, nil
}

// PeriodStart returns the first instant of the day, month or year containing
// now, in now's location. Unknown periods fall back to daily.
func PeriodStart(period domain.CaloriePeriod, now time.Time) time.Time {
	y, m, d := now.Date()
	switch period {
	case domain.PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	case domain.PeriodYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
}

// Progress compares what was eaten in the current period with the goal.
type Progress struct {
	Period    domain.CaloriePeriod `json:"period"`
	Since     time.Time            `json:"since"`
	Goal      int                  `json:"goal"`
	Consumed  domain.Nutrients     `json:"consumed"`
	Remaining int                  `json:"remaining"`
	Percent   float64              `json:"percent"`
	Meals     int                  `json:"meals"`
}

// ComputeProgress totals meals (already restricted to the period) against
// the calorie goal in prefs. Remaining goes negative once the goal is passed.
func ComputeProgress(prefs domain.Preferences, since time.Time, meals []*domain.Meal) Progress {
	p := Progress{
		Period: prefs.CaloriePeriod,
		Since:  since,
		Goal:   prefs.CalorieGoal,
		Meals:  len(meals),
	}
	for _, m := range meals {
		p.Consumed = add(p.Consumed, m.Totals())
	}
	p.Remaining = p.Goal - p.Consumed.Calories
	if p.Goal > 0 {
		p.Percent = float64(p.Consumed.Calories) / float64(p.Goal) * 100
	}
	return p
}

// DaySummary is the roll-up of every meal eaten on one calendar day.
type DaySummary struct {
	Day    string           `json:"day"`
	Meals  int              `json:"meals"`
	Totals domain.Nutrients `json:"totals"`
}

// DailyTotals groups meals by calendar day in loc, newest day first.
func DailyTotals(meals []*domain.Meal, loc *time.Location) []DaySummary {
	if loc == nil {
		loc = time.Local
	}
	byDay := make(map[string]*DaySummary)
	for _, m := range meals {
		day := m.Timestamp.In(loc).Format(time.DateOnly)
		s, ok := byDay[day]
		if !ok {
			s = &DaySummary{Day: day}
			byDay[day] = s
		}
		s.Meals++
		s.Totals = add(s.Totals, m.Totals())
	}

	out := make([]DaySummary, 0, len(byDay))
	for _, s := range byDay {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out
}

func add(a, b domain.Nutrients) domain.Nutrients {
	return domain.Nutrients{
		Calories: a.Calories + b.Calories,
		Protein:  a.Protein + b.Protein,
		Carbs:    a.Carbs + b.Carbs,
		Fat:      a.Fat + b.Fat,
	}
}
