package engine

// ExperiencePerLevelUnit scales the level curve: level L starts at 100*(L-1)^2.
const ExperiencePerLevelUnit = 100

// LevelForExperience returns floor(sqrt(exp/100)) + 1. Non-positive experience is level 1.
func LevelForExperience(exp int64) int {
	if exp <= 0 {
		return 1
	}
	return int(isqrt(exp/ExperiencePerLevelUnit)) + 1
}

// LevelThreshold returns the experience at which level starts.
func LevelThreshold(level int) int64 {
	if level <= 1 {
		return 0
	}
	l := int64(level - 1)
	return ExperiencePerLevelUnit * l * l
}

// ExperienceResult describes one experience mutation.
type ExperienceResult struct {
	Experience  int64 `json:"experience"`
	LevelBefore int   `json:"level_before"`
	Level       int   `json:"level"`
	LeveledUp   bool  `json:"leveled_up"`
}

// AddExperience adds points (of any sign) to current and recomputes the level.
func AddExperience(current, points int64) ExperienceResult {
	before := LevelForExperience(current)
	exp := current + points
	after := LevelForExperience(exp)
	return ExperienceResult{
		Experience:  exp,
		LevelBefore: before,
		Level:       after,
		LeveledUp:   after > before,
	}
}

// ExperienceToNextLevel returns 100*level^2 - exp.
func ExperienceToNextLevel(level int, exp int64) int64 {
	return LevelThreshold(level+1) - exp
}

// LevelProgress returns how far exp is through level, clamped to [0,1].
func LevelProgress(level int, exp int64) float64 {
	lo := LevelThreshold(level)
	hi := LevelThreshold(level + 1)
	den := hi - lo
	if den <= 0 {
		return 1.0
	}
	f := float64(exp-lo) / float64(den)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

// LevelProgressView is the derived progress block shown next to a character.
type LevelProgressView struct {
	CurrentLevelExp    int64   `json:"current_level_exp"`
	NextLevelExp       int64   `json:"next_level_exp"`
	ProgressPercentage float64 `json:"progress_percentage"`
	ExpToNextLevel     int64   `json:"exp_to_next_level"`
}

func NewLevelProgressView(level int, exp int64) LevelProgressView {
	return LevelProgressView{
		CurrentLevelExp:    LevelThreshold(level),
		NextLevelExp:       LevelThreshold(level + 1),
		ProgressPercentage: LevelProgress(level, exp) * 100,
		ExpToNextLevel:     ExperienceToNextLevel(level, exp),
	}
}

// isqrt returns floor(sqrt(n)) for n >= 0 without float rounding.
func isqrt(n int64) int64 {
	if n < 2 {
		return n
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
