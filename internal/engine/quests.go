package engine

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/storage"
)

// GenerateWeeklyQuests creates this ISO week's quest batch. If any quest is
// already tagged with the current week it does nothing and returns nil.
func (s *Service) GenerateWeeklyQuests(ctx context.Context) ([]storage.Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	week := ISOWeek(now)
	existing, err := s.quests.CountByWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		s.log.Debug("weekly quests already generated", zap.String("week", week), zap.Int("count", existing))
		return nil, nil
	}

	var batch []*storage.Quest
	for _, bp := range weeklyBlueprints() {
		q, ok, err := bp.Build(ctx, s, now)
		if err != nil {
			return nil, err
		}
		if !ok {
			s.log.Debug("quest blueprint skipped", zap.String("blueprint", bp.Code))
			continue
		}
		s.log.Debug("quest blueprint built", zap.String("blueprint", bp.Code), zap.String("title", q.Title))
		batch = append(batch, q)
	}
	if len(batch) == 0 {
		return nil, nil
	}

	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := storage.NewQuestRepo(tx)
		for _, q := range batch {
			if err := repo.Insert(ctx, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]storage.Quest, 0, len(batch))
	for _, q := range batch {
		out = append(out, *q)
	}
	s.log.Info("weekly quests generated", zap.String("week", week), zap.Int("count", len(out)))
	return out, nil
}

// UpdateAllQuestProgress recomputes progress for this week's Active quests
// and completes those that reached their target. It returns the quests
// whose progress or status changed.
func (s *Service) UpdateAllQuestProgress(ctx context.Context) ([]storage.Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	active, err := s.quests.ListActive(ctx, ISOWeek(now))
	if err != nil {
		return nil, err
	}

	var changed []storage.Quest
	for _, q := range active {
		progress, err := s.questProgress(ctx, q)
		if err != nil {
			return nil, err
		}
		dirty := false
		if progress != q.CurrentProgress {
			if err := s.quests.UpdateProgress(ctx, q.ID, progress, now); err != nil {
				return nil, err
			}
			q.CurrentProgress = progress
			q.UpdatedAt = now
			dirty = true
		}
		if q.CurrentProgress >= q.TargetValue {
			done, err := s.finishQuest(ctx, &q, q.CurrentProgress, now)
			if err != nil {
				return nil, err
			}
			dirty = dirty || done
		}
		if dirty {
			changed = append(changed, q)
		}
	}
	return changed, nil
}

func (s *Service) questProgress(ctx context.Context, q storage.Quest) (int, error) {
	switch QuestType(q.Type) {
	case QuestTask:
		category := ""
		if q.Category != nil {
			category = *q.Category
		}
		return s.tasks.CountCompletedSince(ctx, s.clock().Add(-QuestDuration), category)
	case QuestHabit:
		if q.HabitID == nil {
			return q.CurrentProgress, nil
		}
		h, err := s.habits.Get(ctx, *q.HabitID)
		if err != nil {
			return 0, err
		}
		if h == nil {
			return q.CurrentProgress, nil
		}
		return h.CurrentStreak, nil
	case QuestCharacter:
		// Lifetime experience, not experience gained this week.
		c, err := s.getCharacter(ctx)
		if err != nil {
			return 0, err
		}
		return int(c.Experience), nil
	default:
		return q.CurrentProgress, nil
	}
}

// finishQuest moves an Active quest to Completed and grants its reward.
// It reports false if the quest had already left Active.
func (s *Service) finishQuest(ctx context.Context, q *storage.Quest, progress int, now time.Time) (bool, error) {
	ok, err := s.quests.Complete(ctx, q.ID, progress, now)
	if err != nil || !ok {
		return false, err
	}
	q.Status = string(QuestCompleted)
	q.CurrentProgress = progress
	q.UpdatedAt = now
	s.metrics.QuestTransition(q.Status)
	s.log.Info("quest completed", zap.Int64("quest_id", q.ID), zap.String("title", q.Title))

	_, err = s.grantExperience(ctx, q.RewardExp, "quest")
	s.bestEffort("quest", err, zap.Int64("quest_id", q.ID))
	return true, nil
}

// ExpireOverdueQuests marks Active quests past their deadline as Expired.
func (s *Service) ExpireOverdueQuests(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.quests.ExpireOverdue(ctx, s.clock())
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		s.metrics.QuestTransition(string(QuestExpired))
	}
	if n > 0 {
		s.log.Info("quests expired", zap.Int("count", n))
	}
	return n, nil
}

// CompleteQuest forces an Active quest to its target and grants the reward.
func (s *Service) CompleteQuest(ctx context.Context, id int64) (*storage.Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, err := s.quests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, NotFoundError{Kind: "quest", ID: id}
	}
	if !QuestStatus(q.Status).CanTransition(QuestCompleted) {
		return nil, StateError{Kind: "quest", ID: id, Reason: "is not active (status " + q.Status + ")"}
	}
	ok, err := s.finishQuest(ctx, q, q.TargetValue, s.clock())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, StateError{Kind: "quest", ID: id, Reason: "is no longer active"}
	}
	return q, nil
}

// QuestFilter narrows ListQuests. Zero values match everything.
type QuestFilter struct {
	Week   string
	Status QuestStatus
}

func (s *Service) ListQuests(ctx context.Context, f QuestFilter) ([]storage.Quest, error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, ValidationError{Field: "status", Reason: "unknown quest status " + string(f.Status)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		all []storage.Quest
		err error
	)
	if f.Week != "" {
		all, err = s.quests.ListByWeek(ctx, f.Week)
	} else {
		all, err = s.quests.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	if f.Status == "" {
		return all, nil
	}
	out := all[:0]
	for _, q := range all {
		if q.Status == string(f.Status) {
			out = append(out, q)
		}
	}
	return out, nil
}

// ActiveQuests returns this week's Active quests.
func (s *Service) ActiveQuests(ctx context.Context) ([]storage.Quest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.quests.ListActive(ctx, ISOWeek(s.clock()))
}

func (s *Service) DeleteQuest(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.quests.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return NotFoundError{Kind: "quest", ID: id}
	}
	return nil
}
