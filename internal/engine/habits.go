package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/storage"
)

func (s *Service) ListHabits(ctx context.Context) ([]storage.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.habits.ListAll(ctx)
}

func (s *Service) GetHabit(ctx context.Context, id int64) (*storage.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.requireHabit(ctx, id)
}

// DeleteHabit removes a habit and all of its entries.
func (s *Service) DeleteHabit(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.habits.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return NotFoundError{Kind: "habit", ID: id}
	}
	return nil
}

func (s *Service) requireHabit(ctx context.Context, id int64) (*storage.Habit, error) {
	h, err := s.habits.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, NotFoundError{Kind: "habit", ID: id}
	}
	return h, nil
}

type LogEntryInput struct {
	HabitID int64 `json:"habit_id" validate:"gt=0"`
	// Date defaults to today (UTC).
	Date      string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Completed bool   `json:"completed"`
	Value     int    `json:"value" validate:"gte=0"`
}

type LogEntryResult struct {
	Entry         storage.HabitEntry `json:"entry"`
	Streak        int                `json:"streak"`
	Reward        *Reward            `json:"reward,omitempty"`
	RewardApplied bool               `json:"reward_applied"`
}

// LogHabitEntry writes the entry for (habit, date), replacing any earlier
// one, recomputes the cached streak and, if the entry satisfies the
// completion predicate, fires the reward hook with the new streak.
func (s *Service) LogHabitEntry(ctx context.Context, in LogEntryInput) (*LogEntryResult, error) {
	in.Date = strings.TrimSpace(in.Date)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.requireHabit(ctx, in.HabitID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if in.Date == "" {
		in.Date = now.Format(DateLayout)
	}
	entry, err := s.habits.UpsertEntry(ctx, storage.HabitEntryUpsert{
		HabitID:   h.ID,
		Date:      in.Date,
		Completed: in.Completed,
		Value:     in.Value,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	streak, err := s.refreshStreak(ctx, h, now)
	if err != nil {
		return nil, err
	}

	res := &LogEntryResult{Entry: *entry, Streak: streak}
	if IsEntryComplete(*h, *entry) {
		r := HabitReward(h.Title, streak)
		res.Reward = &r
		res.RewardApplied = s.bestEffort("habit",
			s.hook.HabitEntryCompleted(ctx, *h, *entry, streak),
			zap.Int64("habit_id", h.ID),
			zap.String("date", entry.Date),
		)
	}
	return res, nil
}

// refreshStreak recomputes and stores h's streak as of now.
func (s *Service) refreshStreak(ctx context.Context, h *storage.Habit, now time.Time) (int, error) {
	entries, err := s.habits.ListEntries(ctx, h.ID)
	if err != nil {
		return 0, err
	}
	streak := ComputeStreak(*h, entries, now)
	if streak != h.CurrentStreak {
		if err := s.habits.UpdateStreak(ctx, h.ID, streak, now); err != nil {
			return 0, err
		}
		h.CurrentStreak = streak
		h.UpdatedAt = now
	}
	return streak, nil
}

// RefreshStreaks recomputes every habit's cached streak as of today.
func (s *Service) RefreshStreaks(ctx context.Context) ([]storage.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	habits, err := s.habits.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	for i := range habits {
		if _, err := s.refreshStreak(ctx, &habits[i], now); err != nil {
			return nil, err
		}
	}
	return habits, nil
}

func (s *Service) ListHabitEntries(ctx context.Context, habitID int64) ([]storage.HabitEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireHabit(ctx, habitID); err != nil {
		return nil, err
	}
	return s.habits.ListEntries(ctx, habitID)
}

// EntriesForDate returns every habit's entry on date (YYYY-MM-DD).
func (s *Service) EntriesForDate(ctx context.Context, date string) ([]storage.HabitEntry, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.habits.ListEntriesByDate(ctx, date)
}

// HabitToday pairs a habit with its entry for one date.
type HabitToday struct {
	Habit          storage.Habit       `json:"habit"`
	TodayEntry     *storage.HabitEntry `json:"today_entry"`
	TodayCompleted bool                `json:"today_completed"`
}

// TodayHabits lists every habit with today's entry and whether it satisfies
// the completion predicate. It also returns the date it used.
func (s *Service) TodayHabits(ctx context.Context) ([]HabitToday, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := s.clock().Format(DateLayout)
	habits, err := s.habits.ListAll(ctx)
	if err != nil {
		return nil, "", err
	}
	entries, err := s.habits.ListEntriesByDate(ctx, date)
	if err != nil {
		return nil, "", err
	}
	byHabit := make(map[int64]storage.HabitEntry, len(entries))
	for _, e := range entries {
		byHabit[e.HabitID] = e
	}

	out := make([]HabitToday, 0, len(habits))
	for _, h := range habits {
		item := HabitToday{Habit: h}
		if e, ok := byHabit[h.ID]; ok {
			e := e
			item.TodayEntry = &e
			item.TodayCompleted = IsEntryComplete(h, e)
		}
		out = append(out, item)
	}
	return out, date, nil
}
