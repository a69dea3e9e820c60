package domain

import "time"

type Measurement struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	WaistInches float64   `json:"waist_inches"`
	HipInches   float64   `json:"hip_inches"`
	WHR         float64   `json:"whr"`
}

// RiskBand is the health category assigned to a waist-to-hip ratio.
type RiskBand string

const (
	RiskHealthy  RiskBand = "Healthy"
	RiskModerate RiskBand = "Moderate"
	RiskHigh     RiskBand = "High Risk"
)

type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
	MealSnack     MealType = "Snack"
	MealOther     MealType = "Other"
)

// ParseMealType returns the MealType matching s exactly, or false.
func ParseMealType(s string) (MealType, bool) {
	switch t := MealType(s); t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack, MealOther:
		return t, true
	}
	return "", false
}

// FoodItem is a single food with per-unit nutrition and a serving multiplier.
// It is never stored on its own; meals carry their items serialized.
type FoodItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  int     `json:"protein"`
	Carbs    int     `json:"carbs"`
	Fat      int     `json:"fat"`
	Quantity float64 `json:"quantity"`
}

// Nutrients holds integer kcal and gram totals.
type Nutrients struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

type Meal struct {
	ID            int64     `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	MealType      MealType  `json:"meal_type"`
	TotalCalories int       `json:"total_calories"`
	TotalProtein  int       `json:"total_protein"`
	TotalCarbs    int       `json:"total_carbs"`
	TotalFat      int       `json:"total_fat"`
	ItemsJSON     string    `json:"items_json"`
}

func (m *Meal) Totals() Nutrients {
	return Nutrients{
		Calories: m.TotalCalories,
		Protein:  m.TotalProtein,
		Carbs:    m.TotalCarbs,
		Fat:      m.TotalFat,
	}
}

type CaloriePeriod string

const (
	PeriodDaily   CaloriePeriod = "daily"
	PeriodMonthly CaloriePeriod = "monthly"
	PeriodYearly  CaloriePeriod = "yearly"
)

func (p CaloriePeriod) Valid() bool {
	return p == PeriodDaily || p == PeriodMonthly || p == PeriodYearly
}

type MeasurementUnit string

const (
	UnitInches      MeasurementUnit = "inches"
	UnitCentimeters MeasurementUnit = "cm"
)

func (u MeasurementUnit) Valid() bool {
	return u == UnitInches || u == UnitCentimeters
}

type Preferences struct {
	CalorieGoal     int             `json:"calorie_goal"`
	CaloriePeriod   CaloriePeriod   `json:"calorie_period"`
	MeasurementUnit MeasurementUnit `json:"measurement_unit"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		CalorieGoal:     2000,
		CaloriePeriod:   PeriodDaily,
		MeasurementUnit: UnitInches,
	}
}
