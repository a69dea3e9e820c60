package ai

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/vbonduro/whrtrack/internal/domain"
	"github.com/vbonduro/whrtrack/internal/nutrition"
)

type ParseKind int

const (
	ParseEmpty ParseKind = iota
	ParseParsed
)

// FoodParse is the outcome of reading a food-recognition reply.
type FoodParse struct {
	Kind  ParseKind
	Items []domain.FoodItem
}

const unknownFoodName = "Unknown Food"

// ParseFoodItems extracts food items from a model reply. Code fences and any
// text around the outermost JSON array are ignored. A reply that is not a
// JSON array of objects yields ParseEmpty, as does one where every element is
// filtered out. Elements with an empty name or a name containing
// "placeholder" are skipped. Each item gets a fresh ID.
func ParseFoodItems(raw string) FoodParse {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	start := strings.IndexByte(clean, '[')
	end := strings.LastIndexByte(clean, ']')
	if start == -1 || end <= start {
		return FoodParse{Kind: ParseEmpty}
	}

	var elems []rawFood
	if err := json.Unmarshal([]byte(clean[start:end+1]), &elems); err != nil {
		return FoodParse{Kind: ParseEmpty}
	}

	items := make([]domain.FoodItem, 0, len(elems))
	for _, e := range elems {
		name := strings.TrimSpace(e.name())
		if name == "" || strings.Contains(strings.ToLower(name), "placeholder") {
			continue
		}
		items = append(items, domain.FoodItem{
			ID:       uuid.NewString(),
			Name:     name,
			Calories: e.Calories.perUnit(),
			Protein:  e.Protein.perUnit(),
			Carbs:    e.Carbs.perUnit(),
			Fat:      e.Fat.perUnit(),
			Quantity: e.quantity(),
		})
	}

	if len(items) == 0 {
		return FoodParse{Kind: ParseEmpty}
	}
	return FoodParse{Kind: ParseParsed, Items: items}
}

type rawFood struct {
	Name     *lenientString `json:"name"`
	Calories lenientNumber  `json:"calories"`
	Protein  lenientNumber  `json:"protein"`
	Carbs    lenientNumber  `json:"carbs"`
	Fat      lenientNumber  `json:"fat"`
	Quantity *lenientNumber `json:"quantity"`
}

func (r rawFood) name() string {
	if r.Name == nil {
		return unknownFoodName
	}
	return string(*r.Name)
}

// quantity is the reported serving count, 1 when missing or not positive,
// capped at nutrition.MaxQuantity.
func (r rawFood) quantity() float64 {
	if r.Quantity == nil {
		return 1.0
	}
	q := float64(*r.Quantity)
	switch {
	case math.IsNaN(q) || q <= 0:
		return 1.0
	case q > nutrition.MaxQuantity:
		return nutrition.MaxQuantity
	}
	return q
}

// lenientNumber accepts numbers and numeric strings. Anything else reads as 0.
type lenientNumber float64

func (n *lenientNumber) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = lenientNumber(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = lenientNumber(f)
		}
	}
	return nil
}

// perUnit truncates n into [0, nutrition.MaxPerUnit]. NaN reads as 0.
func (n lenientNumber) perUnit() int {
	f := float64(n)
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= nutrition.MaxPerUnit:
		return nutrition.MaxPerUnit
	}
	return int(f)
}

// lenientString accepts any JSON scalar and keeps its text form.
type lenientString string

func (s *lenientString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = lenientString(str)
		return nil
	}
	if string(b) == "null" {
		*s = unknownFoodName
		return nil
	}
	*s = lenientString(b)
	return nil
}
