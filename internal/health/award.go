package health

// PointsPerLog is awarded for every logging event, however many fields it fills.
const PointsPerLog = 10

// Progression is a pet's cumulative gamification state. The level is not a
// field: it is always derived from Points.
type Progression struct {
	Points             int
	TotalHealthRecords int
}

func (p Progression) Level() int { return LevelOf(p.Points) }

// Award is the outcome of one logging event.
type Award struct {
	Progression Progression
	NewPoints   int
	NewLevel    int
	LeveledUp   bool
}

// AwardForLogging applies the fixed logging reward to a snapshot.
func AwardForLogging(current Progression) Award {
	next := Progression{
		Points:             current.Points + PointsPerLog,
		TotalHealthRecords: current.TotalHealthRecords + 1,
	}
	newLevel := next.Level()
	return Award{
		Progression: next,
		NewPoints:   next.Points,
		NewLevel:    newLevel,
		LeveledUp:   newLevel > current.Level(),
	}
}
