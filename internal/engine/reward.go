package engine

import "math"

const (
	TaskBaseExp        = 15
	GoalTaskBaseExp    = 25
	HabitBaseExp       = 10
	StreakBonusDays    = 30
	StreakBonusMaxRate = 0.5
)

// Reward is an experience payout plus the attribute that earns one point, if any.
type Reward struct {
	Exp          int64     `json:"exp"`
	Attribute    Attribute `json:"attribute,omitempty"`
	HasAttribute bool      `json:"-"`
}

func TaskReward(title string, goalRelated bool) Reward {
	exp := int64(TaskBaseExp)
	if goalRelated {
		exp = GoalTaskBaseExp
	}
	attr, ok := ClassifyTask(title)
	return Reward{Exp: exp, Attribute: attr, HasAttribute: ok}
}

// HabitReward scales the base by 1 + min(streak/30, 1) * 0.5, rounded half away from zero.
func HabitReward(title string, streak int) Reward {
	frac := math.Min(float64(streak)/StreakBonusDays, 1.0)
	if frac < 0 {
		frac = 0
	}
	multiplier := 1 + frac*StreakBonusMaxRate
	attr, ok := ClassifyHabit(title)
	return Reward{
		Exp:          int64(math.Round(HabitBaseExp * multiplier)),
		Attribute:    attr,
		HasAttribute: ok,
	}
}
