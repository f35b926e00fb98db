package health

// MaxLevel is the highest avatar level. Points keep accruing past it.
const MaxLevel = 6

// levelFloors[i] is the first point total of level i+1.
var levelFloors = [MaxLevel]int{0, 50, 100, 200, 400, 800}

// LevelOf maps cumulative points to an avatar level in [1, MaxLevel].
func LevelOf(points int) int {
	level := 1
	for i, floor := range levelFloors {
		if points >= floor {
			level = i + 1
		}
	}
	return level
}

// ProgressToNext is the fraction [0,1] of the way from the current level's
// floor to the next one, using the same thresholds as LevelOf. It is 1 at
// MaxLevel.
func ProgressToNext(points int) float64 {
	if points < 0 {
		points = 0
	}
	level := LevelOf(points)
	if level >= MaxLevel {
		return 1
	}
	lo, hi := levelFloors[level-1], levelFloors[level]
	return float64(points-lo) / float64(hi-lo)
}

// PointsToNext is how many points remain until the next level, 0 at MaxLevel.
func PointsToNext(points int) int {
	if points < 0 {
		points = 0
	}
	level := LevelOf(points)
	if level >= MaxLevel {
		return 0
	}
	return levelFloors[level] - points
}
