package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/storage"
)

func (s *Service) SetCharacterClass(ctx context.Context, class CharacterClass) (*CharacterView, error) {
	if !class.IsValid() {
		return nil, ValidationError{Field: "character_class", Reason: "unknown class " + string(class)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.getCharacter(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	if err := s.characters.UpdateClass(ctx, string(class), now); err != nil {
		return nil, err
	}
	c.Class = string(class)
	c.UpdatedAt = now
	return newCharacterView(c), nil
}

// ToggleResult reports a task toggle and, when it became completed,
// the reward that was offered to the reward hook.
type ToggleResult struct {
	Task          storage.Task `json:"task"`
	Reward        *Reward      `json:"reward,omitempty"`
	RewardApplied bool         `json:"reward_applied"`
}

// ToggleTask flips a task's completed flag. Completing a task fires the
// reward hook; a hook failure is logged and the toggle still succeeds.
func (s *Service) ToggleTask(ctx context.Context, id int64) (*ToggleResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, NotFoundError{Kind: "task", ID: id}
	}

	now := s.clock()
	t.Completed = !t.Completed
	t.UpdatedAt = now
	if err := s.tasks.SetCompleted(ctx, id, t.Completed, now); err != nil {
		return nil, err
	}

	res := &ToggleResult{Task: *t}
	if t.Completed {
		r := TaskReward(t.Title, t.GoalRelated)
		res.Reward = &r
		res.RewardApplied = s.bestEffort("task", s.hook.TaskCompleted(ctx, *t), zap.Int64("task_id", id))
	}
	return res, nil
}

// UpdateHabitInput patches a habit. Nil fields keep their stored value.
type UpdateHabitInput struct {
	Title       *string `json:"title" validate:"omitempty,max=50"`
	TargetValue *int    `json:"target_value" validate:"omitempty,gt=0"`
}

// UpdateHabit changes a habit's title and target. A new target changes
// the completion rule, so the cached streak is recomputed.
func (s *Service) UpdateHabit(ctx context.Context, id int64, in UpdateHabitInput) (*storage.Habit, error) {
	if in.Title != nil {
		title := normalizeTitle(*in.Title)
		if title == "" {
			return nil, ValidationError{Field: "title", Reason: "is required"}
		}
		in.Title = &title
	}
	if in.TargetValue != nil && *in.TargetValue <= 0 {
		return nil, ValidationError{Field: "target_value", Reason: "must be greater than 0"}
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.requireHabit(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		h.Title = *in.Title
	}
	if in.TargetValue != nil && HabitType(h.Type) == HabitCounter {
		target := *in.TargetValue
		h.TargetValue = &target
	}
	now := s.clock()
	h.UpdatedAt = now
	if err := s.habits.Update(ctx, h); err != nil {
		return nil, err
	}
	if _, err := s.refreshStreak(ctx, h, now); err != nil {
		return nil, err
	}
	return h, nil
}
