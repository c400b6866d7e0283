package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/storage"
)

// RewardHook observes completions after the completion itself has been
// written. Errors are logged by the caller and never undo the completion.
// Hooks run while the service lock is held and must not call back into
// exported Service methods.
type RewardHook interface {
	TaskCompleted(ctx context.Context, task storage.Task) error
	HabitEntryCompleted(ctx context.Context, habit storage.Habit, entry storage.HabitEntry, streak int) error
}

type rewardApplier struct {
	s *Service
}

// DefaultRewardHook grants TaskReward/HabitReward experience and one attribute point.
func DefaultRewardHook(s *Service) RewardHook {
	return rewardApplier{s: s}
}

func (r rewardApplier) TaskCompleted(ctx context.Context, task storage.Task) error {
	_, err := r.s.applyReward(ctx, TaskReward(task.Title, task.GoalRelated), "task")
	return err
}

func (r rewardApplier) HabitEntryCompleted(ctx context.Context, habit storage.Habit, _ storage.HabitEntry, streak int) error {
	_, err := r.s.applyReward(ctx, HabitReward(habit.Title, streak), "habit")
	return err
}

// HookChain calls each hook in order and returns the first error after running all of them.
type HookChain []RewardHook

func (c HookChain) TaskCompleted(ctx context.Context, task storage.Task) error {
	var first error
	for _, h := range c {
		if err := h.TaskCompleted(ctx, task); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c HookChain) HabitEntryCompleted(ctx context.Context, habit storage.Habit, entry storage.HabitEntry, streak int) error {
	var first error
	for _, h := range c {
		if err := h.HabitEntryCompleted(ctx, habit, entry, streak); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// grantExperience adds points to the character and persists experience and level.
func (s *Service) grantExperience(ctx context.Context, points int64, source string) (ExperienceResult, error) {
	c, err := s.getCharacter(ctx)
	if err != nil {
		return ExperienceResult{}, err
	}
	res := AddExperience(c.Experience, points)
	if err := s.characters.UpdateExperience(ctx, res.Experience, res.Level, s.clock()); err != nil {
		return ExperienceResult{}, err
	}
	s.metrics.ExperienceGranted(source, points, res.LeveledUp)
	s.log.Info("experience granted",
		zap.String("source", source),
		zap.Int64("points", points),
		zap.Int64("experience", res.Experience),
		zap.Int("level", res.Level),
		zap.Bool("leveled_up", res.LeveledUp),
	)
	return res, nil
}

// addAttributePoints adds points to one attribute. Invalid names are a no-op.
func (s *Service) addAttributePoints(ctx context.Context, attr Attribute, points int) (*storage.Character, error) {
	c, err := s.getCharacter(ctx)
	if err != nil {
		return nil, err
	}
	set := AttributeSet(c.Attributes)
	if !set.Add(attr, points) {
		s.log.Debug("ignoring unknown attribute", zap.String("attribute", string(attr)))
		return c, nil
	}
	c.Attributes = storage.Attributes(set)
	if err := s.characters.UpdateAttributes(ctx, c.Attributes, s.clock()); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) applyReward(ctx context.Context, r Reward, source string) (ExperienceResult, error) {
	res, err := s.grantExperience(ctx, r.Exp, source)
	if err != nil {
		return ExperienceResult{}, fmt.Errorf("grant %s reward: %w", source, err)
	}
	if r.HasAttribute {
		if _, err := s.addAttributePoints(ctx, r.Attribute, 1); err != nil {
			return res, fmt.Errorf("add %s attribute point: %w", r.Attribute, err)
		}
	}
	return res, nil
}

// bestEffort logs and counts a failed side effect without propagating it.
func (s *Service) bestEffort(source string, err error, fields ...zap.Field) bool {
	if err == nil {
		return true
	}
	s.metrics.RewardFailed(source)
	s.log.Error("reward not applied", append([]zap.Field{zap.String("source", source), zap.Error(err)}, fields...)...)
	return false
}
