package service

import (
	"errors"

	"github.com/vbonduro/whrtrack/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNoItems           = errors.New("meal has no food items")
	ErrInvalidItem       = errors.New("invalid food item")
	ErrInvalidMealType   = errors.New("invalid meal type")
	ErrInvalidRange      = errors.New("range start is after end")
	ErrInvalidPreference = errors.New("invalid preference")
)

// preferenceReader is the subset of PreferenceService other services need.
type preferenceReader interface {
	Current() domain.Preferences
}
