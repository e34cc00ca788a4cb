package model

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrThresholdsNotFound = errors.New("thresholds not found")
	ErrInvalidThresholds  = errors.New("invalid thresholds")
)

// ThresholdKey identifies the thresholds that apply to one nutrient measured
// in one unit.
type ThresholdKey struct {
	Nutrient Nutrient
	Unit     MeasurementUnit
}

func NewThresholdKey(n Nutrient, u MeasurementUnit) ThresholdKey {
	return ThresholdKey{Nutrient: n, Unit: u}
}

func (k ThresholdKey) String() string {
	return string(k.Nutrient) + "/" + string(k.Unit)
}

// Thresholds are the cut points for one key. Values below Lower are
// favorable, values above Upper unfavorable.
type Thresholds struct {
	Upper float64
	Lower float64
}

// Validate reports NaN bounds and inverted ranges. Equal bounds are allowed.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.Lower) || math.IsNaN(t.Upper) {
		return fmt.Errorf("%w: NaN bound", ErrInvalidThresholds)
	}
	if t.Lower > t.Upper {
		return fmt.Errorf("%w: lower %g is above upper %g", ErrInvalidThresholds, t.Lower, t.Upper)
	}
	return nil
}

// ThresholdRule is one configured row of a threshold table.
type ThresholdRule struct {
	Key        ThresholdKey
	Thresholds Thresholds
}

func (r ThresholdRule) Validate() error {
	if !r.Key.Nutrient.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownNutrient, r.Key.Nutrient)
	}
	if !r.Key.Unit.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownUnit, r.Key.Unit)
	}
	if err := r.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%s: %w", r.Key, err)
	}
	return nil
}
