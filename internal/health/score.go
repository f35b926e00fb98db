package health

// Signal weights. They sum to 100.
const (
	WeightEnergy          = 60
	WeightFood            = 10
	WeightWater           = 10
	WeightUrine           = 10
	WeightPoopColor       = 5
	WeightPoopConsistency = 5
)

// Goodness is kept in tenths so the weighted average is exact integer math.
const (
	goodnessFull       = 10
	goodnessBadColor   = 2
	goodnessBadTexture = 3
)

// Score is a daily health score in [0,100]. The zero Score is unknown.
type Score struct {
	Value int
	Valid bool
}

// ComputeScore turns one day's observation into a weighted 0..100 score.
//
// Signals that were not logged are dropped from both the numerator and the
// denominator, so a day with only energy recorded is scored on energy alone.
// An unlogged day, or a logged day with no scoreable signal, yields an
// unknown Score. The result is rounded half-up.
func ComputeScore(o Observation) (Score, error) {
	if err := o.Validate(); err != nil {
		return Score{}, err
	}
	if !o.Logged {
		return Score{}, nil
	}

	var totalWeight, sum int
	add := func(weight, goodness int) {
		totalWeight += weight
		sum += weight * goodness
	}

	if o.Energy != nil {
		add(WeightEnergy, *o.Energy)
	}
	if o.Food != nil {
		add(WeightFood, *o.Food)
	}
	if o.Water != nil {
		add(WeightWater, *o.Water)
	}
	if o.UrineColor != "" {
		add(WeightUrine, urineGoodness(o.UrineColor))
	}
	if o.PoopColor != "" {
		add(WeightPoopColor, poopColorGoodness(o.PoopColor))
	}
	if o.PoopConsistency != "" {
		add(WeightPoopConsistency, consistencyGoodness(o.PoopConsistency))
	}

	if totalWeight == 0 {
		return Score{}, nil
	}

	// sum / (totalWeight*10) * 100, rounded half-up.
	num := sum * 10
	value := (2*num + totalWeight) / (2 * totalWeight)
	return Score{Value: value, Valid: true}, nil
}

func urineGoodness(c UrineColor) int {
	if c == UrineClear || c == UrineYellow {
		return goodnessFull
	}
	return goodnessBadColor
}

func poopColorGoodness(c PoopColor) int {
	if c == PoopBrown {
		return goodnessFull
	}
	return goodnessBadColor
}

func consistencyGoodness(c PoopConsistency) int {
	if c == ConsistencyFirm {
		return goodnessFull
	}
	return goodnessBadTexture
}
