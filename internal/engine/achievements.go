package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/storage"
)

// BonusExp is the experience granted when an achievement is earned.
func BonusExp(typ AchievementType, required int) int64 {
	r := int64(required)
	switch typ {
	case AchievementHabitStreak:
		switch required {
		case 7:
			return 25
		case 30:
			return 100
		case 90:
			return 300
		case 150:
			return 500
		case 230:
			return 1000
		}
		return r * 5
	case AchievementTaskCount:
		switch required {
		case 10:
			return 50
		case 50:
			return 200
		case 100:
			return 500
		}
		return r * 2
	case AchievementCharacterLevel:
		switch required {
		case 5:
			return 150
		case 10:
			return 400
		}
		return r * 50
	case AchievementQuestCount:
		return r * 25
	default:
		return 0
	}
}

// achievementMetrics caches the four live metrics for one evaluation pass.
type achievementMetrics struct {
	s      *Service
	values map[AchievementType]int
}

func (s *Service) newAchievementMetrics() *achievementMetrics {
	return &achievementMetrics{s: s, values: make(map[AchievementType]int, 4)}
}

func (m *achievementMetrics) value(ctx context.Context, typ AchievementType) (int, error) {
	if v, ok := m.values[typ]; ok {
		return v, nil
	}
	var (
		v   int
		err error
	)
	switch typ {
	case AchievementHabitStreak:
		v, err = m.s.habits.MaxStreak(ctx)
	case AchievementTaskCount:
		v, err = m.s.tasks.CountCompleted(ctx)
	case AchievementCharacterLevel:
		var c *storage.Character
		c, err = m.s.getCharacter(ctx)
		if c != nil {
			v = c.Level
		}
	case AchievementQuestCount:
		v, err = m.s.quests.CountByStatus(ctx, string(QuestCompleted))
	default:
		return 0, fmt.Errorf("unknown achievement type %q", typ)
	}
	if err != nil {
		return 0, err
	}
	m.values[typ] = v
	return v, nil
}

// forget drops cached values that a bonus grant may have changed.
func (m *achievementMetrics) forget(typ AchievementType) {
	delete(m.values, typ)
}

// CheckAndUpdate promotes Locked achievements whose requirement is met to
// Available, and Available ones whose requirement is still met to Earned,
// granting BonusExp. Both lists are read before any promotion, so a Locked
// achievement needs a second call to become Earned. It returns every
// achievement whose status changed.
func (s *Service) CheckAndUpdate(ctx context.Context) ([]storage.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.achievements.ListByStatus(ctx, string(AchievementLocked))
	if err != nil {
		return nil, err
	}
	available, err := s.achievements.ListByStatus(ctx, string(AchievementAvailable))
	if err != nil {
		return nil, err
	}

	now := s.clock()
	m := s.newAchievementMetrics()
	var changed []storage.Achievement

	for _, a := range locked {
		met, err := m.met(ctx, a)
		if err != nil {
			return nil, err
		}
		if !met {
			continue
		}
		ok, err := s.achievements.Promote(ctx, a.ID, string(AchievementLocked), string(AchievementAvailable), now)
		if err != nil {
			return nil, err
		}
		if ok {
			a.Status = string(AchievementAvailable)
			a.UpdatedAt = now
			s.metrics.AchievementTransition(a.Status)
			changed = append(changed, a)
		}
	}

	for _, a := range available {
		met, err := m.met(ctx, a)
		if err != nil {
			return nil, err
		}
		if !met {
			continue
		}
		earned, err := s.earn(ctx, a, now)
		if err != nil {
			return nil, err
		}
		if earned != nil {
			m.forget(AchievementCharacterLevel)
			changed = append(changed, *earned)
		}
	}
	return changed, nil
}

func (m *achievementMetrics) met(ctx context.Context, a storage.Achievement) (bool, error) {
	v, err := m.value(ctx, AchievementType(a.Type))
	if err != nil {
		return false, err
	}
	return v >= a.RequiredValue, nil
}

// earn moves an Available achievement to Earned and grants its bonus.
// It returns nil when the achievement was no longer Available.
func (s *Service) earn(ctx context.Context, a storage.Achievement, now time.Time) (*storage.Achievement, error) {
	ok, err := s.achievements.Promote(ctx, a.ID, string(AchievementAvailable), string(AchievementEarned), now)
	if err != nil || !ok {
		return nil, err
	}
	a.Status = string(AchievementEarned)
	a.EarnedAt = &now
	a.UpdatedAt = now
	s.metrics.AchievementTransition(a.Status)
	s.log.Info("achievement earned", zap.Int64("achievement_id", a.ID), zap.String("name", a.Name))

	bonus := BonusExp(AchievementType(a.Type), a.RequiredValue)
	_, err = s.grantExperience(ctx, bonus, "achievement")
	s.bestEffort("achievement", err, zap.Int64("achievement_id", a.ID))
	return &a, nil
}

// EarnAchievement earns one Available achievement after re-checking its requirement.
func (s *Service) EarnAchievement(ctx context.Context, id int64) (*storage.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.achievements.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, NotFoundError{Kind: "achievement", ID: id}
	}
	if !AchievementStatus(a.Status).CanTransition(AchievementEarned) {
		return nil, StateError{Kind: "achievement", ID: id, Reason: "is not available to earn"}
	}
	met, err := s.newAchievementMetrics().met(ctx, *a)
	if err != nil {
		return nil, err
	}
	if !met {
		return nil, StateError{Kind: "achievement", ID: id, Reason: "requirements are no longer met"}
	}
	earned, err := s.earn(ctx, *a, s.clock())
	if err != nil {
		return nil, err
	}
	if earned == nil {
		return nil, StateError{Kind: "achievement", ID: id, Reason: "is not available to earn"}
	}
	return earned, nil
}

func (s *Service) ListAchievements(ctx context.Context) ([]storage.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.achievements.ListAll(ctx)
}

func (s *Service) AchievementsByStatus(ctx context.Context, status AchievementStatus) ([]storage.Achievement, error) {
	if !status.IsValid() {
		return nil, ValidationError{Field: "status", Reason: "unknown achievement status " + string(status)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.achievements.ListByStatus(ctx, string(status))
}

type AchievementStats struct {
	Earned    int `json:"earned"`
	Available int `json:"available"`
	Locked    int `json:"locked"`
	Total     int `json:"total"`
}

func (s *Service) AchievementStats(ctx context.Context) (AchievementStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st AchievementStats
	for _, p := range []struct {
		status AchievementStatus
		dst    *int
	}{
		{AchievementEarned, &st.Earned},
		{AchievementAvailable, &st.Available},
		{AchievementLocked, &st.Locked},
	} {
		n, err := s.achievements.CountByStatus(ctx, string(p.status))
		if err != nil {
			return AchievementStats{}, err
		}
		*p.dst = n
	}
	st.Total = st.Earned + st.Available + st.Locked
	return st, nil
}

type defaultAchievement struct {
	name, description, icon string
	typ                     AchievementType
	required                int
}

var defaultAchievements = []defaultAchievement{
	{"Tydzień Wytrwałości", "Utrzymaj passę nawyku przez 7 dni", "🔥", AchievementHabitStreak, 7},
	{"Miesiąc Dyscypliny", "Utrzymaj passę nawyku przez 30 dni", "📅", AchievementHabitStreak, 30},
	{"Kwartał Mistrza", "Utrzymaj passę nawyku przez 90 dni", "🏅", AchievementHabitStreak, 90},
	{"Niezłomny", "Utrzymaj passę nawyku przez 150 dni", "💎", AchievementHabitStreak, 150},
	{"Legenda Nawyków", "Utrzymaj passę nawyku przez 230 dni", "👑", AchievementHabitStreak, 230},
	{"Pierwsze Kroki", "Ukończ 10 zadań", "✅", AchievementTaskCount, 10},
	{"Pracuś", "Ukończ 50 zadań", "📋", AchievementTaskCount, 50},
	{"Maszyna Produktywności", "Ukończ 100 zadań", "🏆", AchievementTaskCount, 100},
	{"Awans", "Osiągnij poziom 5", "⭐", AchievementCharacterLevel, 5},
	{"Weteran", "Osiągnij poziom 10", "🌟", AchievementCharacterLevel, 10},
	{"Poszukiwacz Przygód", "Ukończ pierwszy quest", "🗺️", AchievementQuestCount, 1},
	{"Łowca Questów", "Ukończ 5 questów", "🎯", AchievementQuestCount, 5},
	{"Bohater", "Ukończ 10 questów", "⚔️", AchievementQuestCount, 10},
}

// SeedDefaultAchievements inserts the built-in achievements when none exist.
// It returns how many were inserted.
func (s *Service) SeedDefaultAchievements(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.achievements.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repo := storage.NewAchievementRepo(tx)
		now := s.clock()
		for _, d := range defaultAchievements {
			if _, err := repo.Insert(ctx, storage.AchievementInsert{
				Name:          d.name,
				Description:   d.description,
				Type:          string(d.typ),
				RequiredValue: d.required,
				Icon:          d.icon,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("default achievements seeded", zap.Int("count", len(defaultAchievements)))
	return len(defaultAchievements), nil
}
