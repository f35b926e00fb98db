package health

import (
	"fmt"
	"math"
	"strings"
)

// UrineColor is the closed set of urine colours a day can be logged with.
// The empty value means "not logged".
type UrineColor string

const (
	UrineClear  UrineColor = "clear"
	UrineYellow UrineColor = "yellow"
	UrineDark   UrineColor = "dark"
	UrineRed    UrineColor = "red"
)

// PoopColor is the closed set of stool colours.
type PoopColor string

const (
	PoopBrown  PoopColor = "brown"
	PoopGreen  PoopColor = "green"
	PoopBlack  PoopColor = "black"
	PoopRed    PoopColor = "red"
	PoopYellow PoopColor = "yellow"
)

// PoopConsistency is the closed set of stool consistencies.
type PoopConsistency string

const (
	ConsistencyFirm   PoopConsistency = "firm"
	ConsistencySoft   PoopConsistency = "soft"
	ConsistencyLoose  PoopConsistency = "loose"
	ConsistencyLiquid PoopConsistency = "liquid"
)

var (
	urineColors      = []UrineColor{UrineClear, UrineYellow, UrineDark, UrineRed}
	poopColors       = []PoopColor{PoopBrown, PoopGreen, PoopBlack, PoopRed, PoopYellow}
	poopConsistences = []PoopConsistency{ConsistencyFirm, ConsistencySoft, ConsistencyLoose, ConsistencyLiquid}
)

// Scale bounds for energy, food and water.
const (
	MinScale = 1
	MaxScale = 10
)

// ValidationError names the observation field that broke the input contract.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Observation is one calendar day of raw inputs for a pet.
// Nil pointers and empty enum values mean the signal was not logged.
type Observation struct {
	Energy          *int
	Food            *int
	Water           *int
	Weight          *float64 // pounds
	UrineColor      UrineColor
	PoopColor       PoopColor
	PoopConsistency PoopConsistency
	Logged          bool
}

// Validate rejects out-of-range numbers and values outside the closed enumerations.
func (o Observation) Validate() error {
	scales := []struct {
		field string
		v     *int
	}{
		{"energy", o.Energy},
		{"food", o.Food},
		{"water", o.Water},
	}
	for _, s := range scales {
		if s.v == nil {
			continue
		}
		if *s.v < MinScale || *s.v > MaxScale {
			return ValidationError{Field: s.field, Message: fmt.Sprintf("must be between %d and %d, got %d", MinScale, MaxScale, *s.v)}
		}
	}
	if w := o.Weight; w != nil {
		if math.IsNaN(*w) || math.IsInf(*w, 0) {
			return ValidationError{Field: "weight", Message: "must be a finite number"}
		}
		if *w < 0 {
			return ValidationError{Field: "weight", Message: "must not be negative"}
		}
	}
	if o.UrineColor != "" && !o.UrineColor.Valid() {
		return ValidationError{Field: "urineColor", Message: fmt.Sprintf("unknown value %q", o.UrineColor)}
	}
	if o.PoopColor != "" && !o.PoopColor.Valid() {
		return ValidationError{Field: "poopColor", Message: fmt.Sprintf("unknown value %q", o.PoopColor)}
	}
	if o.PoopConsistency != "" && !o.PoopConsistency.Valid() {
		return ValidationError{Field: "poopConsistency", Message: fmt.Sprintf("unknown value %q", o.PoopConsistency)}
	}
	return nil
}

// HasSignals reports whether any scoreable field is set. Weight is not scored.
func (o Observation) HasSignals() bool {
	return o.Energy != nil || o.Food != nil || o.Water != nil ||
		o.UrineColor != "" || o.PoopColor != "" || o.PoopConsistency != ""
}

func (c UrineColor) Valid() bool {
	for _, v := range urineColors {
		if v == c {
			return true
		}
	}
	return false
}

func (c PoopColor) Valid() bool {
	for _, v := range poopColors {
		if v == c {
			return true
		}
	}
	return false
}

func (c PoopConsistency) Valid() bool {
	for _, v := range poopConsistences {
		if v == c {
			return true
		}
	}
	return false
}

// ParseUrineColor accepts any letter case and surrounding whitespace.
func ParseUrineColor(s string) (UrineColor, error) {
	c := UrineColor(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ValidationError{Field: "urineColor", Message: fmt.Sprintf("unknown value %q", s)}
	}
	return c, nil
}

func ParsePoopColor(s string) (PoopColor, error) {
	c := PoopColor(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ValidationError{Field: "poopColor", Message: fmt.Sprintf("unknown value %q", s)}
	}
	return c, nil
}

func ParsePoopConsistency(s string) (PoopConsistency, error) {
	c := PoopConsistency(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", ValidationError{Field: "poopConsistency", Message: fmt.Sprintf("unknown value %q", s)}
	}
	return c, nil
}

// IntPtr and FloatPtr help callers fill optional fields.
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }
