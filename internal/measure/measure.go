// Package measure holds the waist-to-hip ratio rules.
package measure

import (
	"errors"

	"github.com/vbonduro/whrtrack/internal/domain"
)

var (
	ErrInvalidHip   = errors.New("hip circumference must be greater than zero")
	ErrInvalidWaist = errors.New("waist circumference must be greater than zero")
)

const (
	moderateThreshold = 0.85
	highThreshold     = 0.95

	cmPerInch = 2.54
)

// ComputeRatio returns waist/hip. Non-positive inputs are rejected before
// the division.
func ComputeRatio(waist, hip float64) (float64, error) {
	if hip <= 0 {
		return 0, ErrInvalidHip
	}
	if waist <= 0 {
		return 0, ErrInvalidWaist
	}
	return waist / hip, nil
}

// Classify maps a ratio to its risk band. Each band includes its lower bound.
func Classify(ratio float64) domain.RiskBand {
	switch {
	case ratio < moderateThreshold:
		return domain.RiskHealthy
	case ratio < highThreshold:
		return domain.RiskModerate
	default:
		return domain.RiskHigh
	}
}

// ToInches converts a circumference in unit to inches.
func ToInches(value float64, unit domain.MeasurementUnit) float64 {
	if unit == domain.UnitCentimeters {
		return value / cmPerInch
	}
	return value
}
