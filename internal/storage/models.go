package storage

import "time"

// MainCharacterID is the id of the single character row.
const MainCharacterID int64 = 1

type Attributes struct {
	Strength     int `json:"strength"`
	Intelligence int `json:"intelligence"`
	Charisma     int `json:"charisma"`
	Dexterity    int `json:"dexterity"`
	Wisdom       int `json:"wisdom"`
	Constitution int `json:"constitution"`
}

type Character struct {
	ID         int64      `json:"id"`
	Level      int        `json:"level"`
	Experience int64      `json:"experience"`
	Class      string     `json:"character_class"`
	Attributes Attributes `json:"attributes"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Completed   bool      `json:"completed"`
	GoalRelated bool      `json:"goal_related"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Habit struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Type          string    `json:"habit_type"`
	TargetValue   *int      `json:"target_value"`
	CurrentStreak int       `json:"current_streak"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type HabitEntry struct {
	ID        int64     `json:"id"`
	HabitID   int64     `json:"habit_id"`
	Date      string    `json:"date"`
	Completed bool      `json:"completed"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type Quest struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Type            string     `json:"quest_type"`
	TargetValue     int        `json:"target_value"`
	CurrentProgress int        `json:"current_progress"`
	Category        *string    `json:"category"`
	HabitID         *int64     `json:"habit_id"`
	Status          string     `json:"status"`
	RewardExp       int64      `json:"reward_exp"`
	Deadline        *time.Time `json:"deadline"`
	Week            string     `json:"week"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Achievement struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Type          string     `json:"achievement_type"`
	RequiredValue int        `json:"required_value"`
	Icon          string     `json:"icon"`
	Status        string     `json:"status"`
	EarnedAt      *time.Time `json:"earned_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
