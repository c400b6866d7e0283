package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AssQ222/PDRPG/internal/storage"
)

// QuestDuration is how long a generated quest stays Active.
const QuestDuration = 7 * 24 * time.Hour

const (
	taskQuestMaxTarget     = 5
	habitQuestMinStreak    = 3
	habitQuestTarget       = 7
	characterQuestBase     = 100
	characterQuestPerLevel = 25
	categoryQuestTarget    = 3
)

// questCategories are tried in order; each group is one category and the
// first keyword found in an open task title becomes the quest's category.
var questCategories = [][]string{
	{"nauka", "study"},
	{"sport"},
	{"praca", "work"},
	{"projekt", "project"},
}

// questBlueprint is one candidate in the weekly batch. Build returns
// ok=false when its precondition does not hold for the current data.
type questBlueprint struct {
	Code  string
	Build func(ctx context.Context, s *Service, now time.Time) (q *storage.Quest, ok bool, err error)
}

func weeklyBlueprints() []questBlueprint {
	return []questBlueprint{
		{
			Code: "task_executor",
			Build: func(ctx context.Context, s *Service, now time.Time) (*storage.Quest, bool, error) {
				open, err := s.tasks.CountIncomplete(ctx)
				if err != nil {
					return nil, false, err
				}
				if open == 0 {
					return nil, false, nil
				}
				target := min(taskQuestMaxTarget, open)
				return newWeeklyQuest(now, QuestTask,
					"Tygodniowy Wykonawca",
					fmt.Sprintf("Ukończ %d zadań w tym tygodniu", target),
					target, 50), true, nil
			},
		},
		{
			Code: "consistency_master",
			Build: func(ctx context.Context, s *Service, now time.Time) (*storage.Quest, bool, error) {
				h, err := s.habits.TopStreak(ctx)
				if err != nil {
					return nil, false, err
				}
				if h == nil || h.CurrentStreak < habitQuestMinStreak {
					return nil, false, nil
				}
				q := newWeeklyQuest(now, QuestHabit,
					"Mistrz Konsekwencji",
					fmt.Sprintf("Utrzymaj passę nawyku '%s' przez %d dni", h.Title, habitQuestTarget),
					habitQuestTarget, 75)
				id := h.ID
				q.HabitID = &id
				return q, true, nil
			},
		},
		{
			Code: "weekly_growth",
			Build: func(ctx context.Context, s *Service, now time.Time) (*storage.Quest, bool, error) {
				c, err := s.getCharacter(ctx)
				if err != nil {
					return nil, false, err
				}
				target := characterQuestBase + c.Level*characterQuestPerLevel
				return newWeeklyQuest(now, QuestCharacter,
					"Tygodniowy Rozwój",
					fmt.Sprintf("Zdobądź %d punktów doświadczenia", target),
					target, 100), true, nil
			},
		},
		{
			Code: "specialist",
			Build: func(ctx context.Context, s *Service, now time.Time) (*storage.Quest, bool, error) {
				open, err := s.tasks.ListIncomplete(ctx)
				if err != nil {
					return nil, false, err
				}
				category, ok := pickQuestCategory(open)
				if !ok {
					return nil, false, nil
				}
				q := newWeeklyQuest(now, QuestTask,
					"Specjalista: "+strings.ToUpper(category),
					fmt.Sprintf("Ukończ %d zadania z kategorii '%s'", categoryQuestTarget, category),
					categoryQuestTarget, 60)
				q.Category = &category
				return q, true, nil
			},
		},
	}
}

func pickQuestCategory(open []storage.Task) (string, bool) {
	for _, group := range questCategories {
		for _, t := range open {
			title := strings.ToLower(t.Title)
			for _, kw := range group {
				if strings.Contains(title, kw) {
					return kw, true
				}
			}
		}
	}
	return "", false
}

func newWeeklyQuest(now time.Time, typ QuestType, title, description string, target int, reward int64) *storage.Quest {
	deadline := now.Add(QuestDuration)
	return &storage.Quest{
		Title:       title,
		Description: description,
		Type:        string(typ),
		TargetValue: target,
		Status:      string(QuestActive),
		RewardExp:   reward,
		Deadline:    &deadline,
		Week:        ISOWeek(now),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ISOWeek formats t's ISO 8601 week as "YYYY-WW".
func ISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-%02d", year, week)
}
