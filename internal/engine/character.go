package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/storage"
)

// CharacterView is a character plus its derived level progress.
type CharacterView struct {
	storage.Character
	LevelProgress LevelProgressView `json:"level_progress"`
}

func newCharacterView(c *storage.Character) *CharacterView {
	return &CharacterView{
		Character:     *c,
		LevelProgress: NewLevelProgressView(c.Level, c.Experience),
	}
}

// GetCharacter returns the character, creating a default Warrior on first use.
func (s *Service) GetCharacter(ctx context.Context) (*CharacterView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.getCharacter(ctx)
	if err != nil {
		return nil, err
	}
	return newCharacterView(c), nil
}

// CreateCharacter resets the character to level 1 with starting attributes.
func (s *Service) CreateCharacter(ctx context.Context, class CharacterClass) (*CharacterView, error) {
	if !class.IsValid() {
		return nil, ValidationError{Field: "character_class", Reason: "unknown class " + string(class)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	c := &storage.Character{
		Level:      1,
		Experience: 0,
		Class:      string(class),
		Attributes: storage.Attributes(DefaultAttributeSet()),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.characters.Replace(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("character reset", zap.String("class", c.Class))
	return newCharacterView(c), nil
}

// AddExperience adds points to the character. The sign is not checked.
func (s *Service) AddExperience(ctx context.Context, points int64) (ExperienceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.grantExperience(ctx, points, "manual")
}

// AddAttributePoints adds points to the named attribute, rejecting unknown names.
func (s *Service) AddAttributePoints(ctx context.Context, name string, points int) (*CharacterView, error) {
	attr, err := ParseAttribute(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.addAttributePoints(ctx, attr, points)
	if err != nil {
		return nil, err
	}
	return newCharacterView(c), nil
}
