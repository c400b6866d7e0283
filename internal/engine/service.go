package engine

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/metrics"
	"github.com/AssQ222/PDRPG/internal/storage"
)

// Service runs every progression rule against one database handle.
// Exported methods hold mu for their whole duration; unexported helpers
// assume it is already held.
type Service struct {
	mu sync.Mutex

	db           *sql.DB
	characters   *storage.CharacterRepo
	tasks        *storage.TaskRepo
	habits       *storage.HabitRepo
	quests       *storage.QuestRepo
	achievements *storage.AchievementRepo

	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	hook    RewardHook
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRewardHook replaces the default hook that grants experience and attribute points.
func WithRewardHook(h RewardHook) Option {
	return func(s *Service) { s.hook = h }
}

func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:           db,
		characters:   storage.NewCharacterRepo(db),
		tasks:        storage.NewTaskRepo(db),
		habits:       storage.NewHabitRepo(db),
		quests:       storage.NewQuestRepo(db),
		achievements: storage.NewAchievementRepo(db),
		log:          zap.NewNop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.hook == nil {
		s.hook = DefaultRewardHook(s)
	}
	return s
}

func (s *Service) CharacterRepo() *storage.CharacterRepo     { return s.characters }
func (s *Service) TaskRepo() *storage.TaskRepo               { return s.tasks }
func (s *Service) HabitRepo() *storage.HabitRepo             { return s.habits }
func (s *Service) QuestRepo() *storage.QuestRepo             { return s.quests }
func (s *Service) AchievementRepo() *storage.AchievementRepo { return s.achievements }

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// getCharacter returns the singleton character, creating a default one if
// needed and repairing a cached level that drifted from its experience.
func (s *Service) getCharacter(ctx context.Context) (*storage.Character, error) {
	c, err := s.characters.Get(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		now := s.clock()
		c = &storage.Character{
			Level:      1,
			Experience: 0,
			Class:      string(DefaultClass),
			Attributes: storage.Attributes(DefaultAttributeSet()),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.characters.Replace(ctx, c); err != nil {
			return nil, err
		}
		s.log.Info("character created", zap.String("class", c.Class))
		return c, nil
	}
	computed := LevelForExperience(c.Experience)
	if c.Level != computed {
		s.log.Warn("repairing cached level",
			zap.Int("cached", c.Level),
			zap.Int("computed", computed),
			zap.Int64("experience", c.Experience),
		)
		c.Level = computed
		if err := s.characters.UpdateExperience(ctx, c.Experience, c.Level, s.clock()); err != nil {
			return nil, err
		}
	}
	return c, nil
}
