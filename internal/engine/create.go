package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/storage"
)

type CreateTaskInput struct {
	Title       string `json:"title" validate:"required,max=100"`
	GoalRelated bool   `json:"goal_related"`
}

func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*storage.Task, error) {
	in.Title = normalizeTitle(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.tasks.Insert(ctx, storage.TaskInsert{
		Title:       in.Title,
		GoalRelated: in.GoalRelated,
		CreatedAt:   s.clock(),
	})
	if err != nil {
		return nil, err
	}
	return s.tasks.Get(ctx, id)
}

type CreateHabitInput struct {
	Title       string    `json:"title" validate:"required,max=50"`
	Type        HabitType `json:"habit_type"`
	TargetValue *int      `json:"target_value" validate:"omitempty,gt=0"`
}

func (in *CreateHabitInput) normalize() error {
	in.Title = normalizeTitle(in.Title)
	if in.Type == "" {
		in.Type = HabitBoolean
	}
	if !in.Type.IsValid() {
		return ValidationError{Field: "habit_type", Reason: "must be Boolean or Counter"}
	}
	if in.Type == HabitBoolean {
		in.TargetValue = nil
	}
	return validateStruct(in)
}

func (s *Service) CreateHabit(ctx context.Context, in CreateHabitInput) (*storage.Habit, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.habits.Insert(ctx, storage.HabitInsert{
		Title:       in.Title,
		Type:        string(in.Type),
		TargetValue: in.TargetValue,
		CreatedAt:   s.clock(),
	})
	if err != nil {
		return nil, err
	}
	return s.habits.Get(ctx, id)
}

// CreateQuestInput adds a quest outside weekly generation.
type CreateQuestInput struct {
	Title       string    `json:"title" validate:"required,max=100"`
	Description string    `json:"description" validate:"max=500"`
	Type        QuestType `json:"quest_type"`
	TargetValue int       `json:"target_value" validate:"gt=0"`
	Category    *string   `json:"category"`
	HabitID     *int64    `json:"habit_id"`
	RewardExp   int64     `json:"reward_exp" validate:"gte=0"`
	// Deadline defaults to seven days from now.
	Deadline *time.Time `json:"deadline"`
}

func (s *Service) CreateQuest(ctx context.Context, in CreateQuestInput) (*storage.Quest, error) {
	in.Title = normalizeTitle(in.Title)
	if !in.Type.IsValid() {
		return nil, ValidationError{Field: "quest_type", Reason: "must be Task, Habit or Character"}
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Type == QuestHabit && in.HabitID == nil {
		return nil, ValidationError{Field: "habit_id", Reason: "is required for Habit quests"}
	}
	if in.Type != QuestHabit {
		in.HabitID = nil
	}
	if in.Type != QuestTask {
		in.Category = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.HabitID != nil {
		h, err := s.habits.Get(ctx, *in.HabitID)
		if err != nil {
			return nil, err
		}
		if h == nil {
			return nil, NotFoundError{Kind: "habit", ID: *in.HabitID}
		}
	}

	now := s.clock()
	deadline := in.Deadline
	if deadline == nil {
		d := now.Add(QuestDuration)
		deadline = &d
	}
	q := &storage.Quest{
		Title:       in.Title,
		Description: in.Description,
		Type:        string(in.Type),
		TargetValue: in.TargetValue,
		Category:    in.Category,
		HabitID:     in.HabitID,
		Status:      string(QuestActive),
		RewardExp:   in.RewardExp,
		Deadline:    deadline,
		Week:        ISOWeek(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.quests.Insert(ctx, q); err != nil {
		return nil, err
	}
	s.log.Info("quest created", zap.Int64("quest_id", q.ID), zap.String("type", q.Type))
	return q, nil
}

type CreateAchievementInput struct {
	Name          string          `json:"name" validate:"required,max=100"`
	Description   string          `json:"description" validate:"max=500"`
	Type          AchievementType `json:"achievement_type"`
	RequiredValue int             `json:"required_value" validate:"gt=0"`
	Icon          string          `json:"icon" validate:"max=16"`
}

func (s *Service) CreateAchievement(ctx context.Context, in CreateAchievementInput) (*storage.Achievement, error) {
	in.Name = normalizeTitle(in.Name)
	if !in.Type.IsValid() {
		return nil, ValidationError{Field: "achievement_type", Reason: "must be HabitStreak, TaskCount, CharacterLevel or QuestCount"}
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.achievements.Insert(ctx, storage.AchievementInsert{
		Name:          in.Name,
		Description:   in.Description,
		Type:          string(in.Type),
		RequiredValue: in.RequiredValue,
		Icon:          in.Icon,
		CreatedAt:     s.clock(),
	})
	if err != nil {
		return nil, err
	}
	return s.achievements.Get(ctx, id)
}
