package diary

import (
	"strconv"
	"strings"

	"pet-health-diary/internal/health"
)

// ParseEntry reads a chat entry such as
//
//	energy=7 food=8 water=6 urine=clear poop=brown consistency=firm weight=42.5
//
// Pairs may be separated by spaces, commas or new lines, and "key: value"
// works as well as "key=value".
func ParseEntry(s string) (health.Observation, error) {
	obs := health.Observation{Logged: true}

	s = strings.NewReplacer(" = ", "=", "= ", "=", " =", "=", ": ", ":").Replace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t' || r == ';'
	})
	if len(fields) == 0 {
		return obs, health.ValidationError{Field: "entry", Message: "nothing to log"}
	}

	for _, f := range fields {
		key, val, ok := strings.Cut(f, "=")
		if !ok {
			key, val, ok = strings.Cut(f, ":")
		}
		if !ok || val == "" {
			return obs, health.ValidationError{Field: f, Message: "expected key=value"}
		}

		var err error
		switch strings.ToLower(key) {
		case "energy", "e":
			obs.Energy, err = parseScale("energy", val)
		case "food", "appetite", "f":
			obs.Food, err = parseScale("food", val)
		case "water", "w":
			obs.Water, err = parseScale("water", val)
		case "weight", "lbs":
			w, perr := strconv.ParseFloat(val, 64)
			if perr != nil {
				return obs, health.ValidationError{Field: "weight", Message: "not a number"}
			}
			obs.Weight = &w
		case "urine":
			obs.UrineColor, err = health.ParseUrineColor(val)
		case "poop", "stool":
			obs.PoopColor, err = health.ParsePoopColor(val)
		case "consistency", "texture":
			obs.PoopConsistency, err = health.ParsePoopConsistency(val)
		default:
			return obs, health.ValidationError{Field: key, Message: "unknown field"}
		}
		if err != nil {
			return obs, err
		}
	}
	return obs, obs.Validate()
}

func parseScale(field, val string) (*int, error) {
	n, err := strconv.Atoi(val)
	if err != nil {
		return nil, health.ValidationError{Field: field, Message: "not a whole number"}
	}
	return &n, nil
}
