package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownNutrient = errors.New("unknown nutrient")
	ErrUnknownUnit     = errors.New("unknown measurement unit")
)

// Nutrient is one of the substances tracked on a label.
type Nutrient string

const (
	NutrientFat          Nutrient = "fat"
	NutrientSaturatedFat Nutrient = "saturated_fat"
	NutrientSugar        Nutrient = "sugar"
	NutrientSalt         Nutrient = "salt"
)

var nutrients = [...]Nutrient{
	NutrientFat,
	NutrientSaturatedFat,
	NutrientSugar,
	NutrientSalt,
}

// Nutrients returns the fixed set of tracked nutrients in canonical order.
func Nutrients() []Nutrient {
	out := make([]Nutrient, len(nutrients))
	copy(out, nutrients[:])
	return out
}

func ParseNutrient(s string) (Nutrient, error) {
	for _, n := range nutrients {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNutrient, s)
}

func (n Nutrient) Valid() bool {
	_, err := ParseNutrient(string(n))
	return err == nil
}

func (n Nutrient) String() string {
	return string(n)
}

// MeasurementUnit is the basis a label's quantities are expressed in.
type MeasurementUnit string

const (
	UnitGram       MeasurementUnit = "gram"
	UnitMilliliter MeasurementUnit = "milliliter"
)

var units = [...]MeasurementUnit{
	UnitGram,
	UnitMilliliter,
}

func Units() []MeasurementUnit {
	out := make([]MeasurementUnit, len(units))
	copy(out, units[:])
	return out
}

func ParseUnit(s string) (MeasurementUnit, error) {
	for _, u := range units {
		if string(u) == s {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

func (u MeasurementUnit) Valid() bool {
	_, err := ParseUnit(string(u))
	return err == nil
}

func (u MeasurementUnit) String() string {
	return string(u)
}
