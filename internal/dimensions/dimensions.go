// internal/dimensions/dimensions.go

// Package dimensions validates and defaults the physical attributes of a
// vehicle combination. All values are whole centimeters; the same defaulting
// runs on draft saves and submissions, but only submissions enforce bounds.
package dimensions

import (
	"fmt"

	"github.com/taot23/aetlicencas/internal/models"
)

// Combination-specific defaults, in centimeters.
const (
	DefaultWidth         = 260
	DefaultHeight        = 440
	FlatbedDefaultWidth  = 320
	FlatbedDefaultHeight = 495

	FlatbedMaxLength = 2500
	MinLength        = 1980
	MaxLength        = 3000
)

// Attributes is the physical attribute set of a request. A zero dimension
// means the field is absent; an empty Cargo means no cargo type was chosen.
type Attributes struct {
	Length int
	Width  int
	Height int
	Cargo  models.CargoType
}

// BoundError reports a dimension outside the legal bounds for the
// combination and cargo type. Min or Max is zero when that side is open.
type BoundError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *BoundError) Error() string {
	switch {
	case e.Min > 0 && e.Value < e.Min:
		return fmt.Sprintf("%s %d cm is below the minimum of %d cm", e.Field, e.Value, e.Min)
	case e.Max > 0 && e.Value > e.Max:
		return fmt.Sprintf("%s %d cm exceeds the maximum of %d cm", e.Field, e.Value, e.Max)
	default:
		return fmt.Sprintf("%s %d cm is out of range", e.Field, e.Value)
	}
}

// ApplyDefaults fills absent width, height, and cargo type for the given
// combination. Length is never defaulted. This is the lenient path run on
// every draft save so persisted drafts do not regress to undefined
// dimensions.
func ApplyDefaults(combination models.CombinationType, attrs Attributes) Attributes {
	if attrs.Width == 0 {
		if combination == models.CombinationFlatbed {
			attrs.Width = FlatbedDefaultWidth
		} else {
			attrs.Width = DefaultWidth
		}
	}
	if attrs.Height == 0 {
		if combination == models.CombinationFlatbed {
			attrs.Height = FlatbedDefaultHeight
		} else {
			attrs.Height = DefaultHeight
		}
	}
	if attrs.Cargo == "" {
		if combination == models.CombinationFlatbed {
			attrs.Cargo = models.CargoTypeIndivisible
		} else {
			attrs.Cargo = models.CargoTypeDry
		}
	}
	return attrs
}

// Validate enforces the length bounds for the combination and cargo type.
// It assumes defaults have already been applied. This is the strict path run
// at submission.
func Validate(combination models.CombinationType, attrs Attributes) error {
	if attrs.Length <= 0 {
		return &BoundError{Field: "length", Value: attrs.Length, Min: 1}
	}

	if combination == models.CombinationFlatbed {
		// An oversized cargo is constrained by the cargo itself, not the
		// vehicle, so no length bound applies.
		if attrs.Cargo == models.CargoTypeOversized {
			return nil
		}
		if attrs.Length > FlatbedMaxLength {
			return &BoundError{Field: "length", Value: attrs.Length, Max: FlatbedMaxLength}
		}
		return nil
	}

	if attrs.Length < MinLength {
		return &BoundError{Field: "length", Value: attrs.Length, Min: MinLength, Max: MaxLength}
	}
	if attrs.Length > MaxLength {
		return &BoundError{Field: "length", Value: attrs.Length, Min: MinLength, Max: MaxLength}
	}
	return nil
}

// ValidateStrict defaults and validates in one step, returning the fully
// defaulted attribute set on success.
func ValidateStrict(combination models.CombinationType, attrs Attributes) (Attributes, error) {
	attrs = ApplyDefaults(combination, attrs)
	if err := Validate(combination, attrs); err != nil {
		return attrs, err
	}
	return attrs, nil
}
