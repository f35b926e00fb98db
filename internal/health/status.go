package health

// Status is the band a daily score falls into.
type Status string

const (
	StatusUnknown Status = "unknown"
	StatusPoor    Status = "poor"
	StatusFair    Status = "fair"
	StatusGood    Status = "good"
)

const (
	poorBelow = 40
	fairBelow = 70
)

// Classify maps a score to its band. An unknown score is StatusUnknown.
func Classify(s Score) Status {
	switch {
	case !s.Valid:
		return StatusUnknown
	case s.Value < poorBelow:
		return StatusPoor
	case s.Value < fairBelow:
		return StatusFair
	default:
		return StatusGood
	}
}

// Color is the presentation token for the band.
func (s Status) Color() string {
	switch s {
	case StatusPoor:
		return "red"
	case StatusFair:
		return "amber"
	case StatusGood:
		return "green"
	default:
		return "gray"
	}
}

// NeedsAttention gates the "talk to a vet" escalation.
func (s Status) NeedsAttention() bool {
	return s == StatusPoor
}

// Assessment is everything derived from one observation.
type Assessment struct {
	Score          Score
	Status         Status
	NeedsAttention bool
}

// Assess scores and classifies an observation. Callers should call it again
// after every change to the observation rather than keep an old Assessment.
func Assess(o Observation) (Assessment, error) {
	score, err := ComputeScore(o)
	if err != nil {
		return Assessment{}, err
	}
	st := Classify(score)
	return Assessment{
		Score:          score,
		Status:         st,
		NeedsAttention: st.NeedsAttention(),
	}, nil
}
