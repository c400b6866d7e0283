package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type CharacterRepo struct {
	db DBTX
}

func NewCharacterRepo(db DBTX) *CharacterRepo {
	return &CharacterRepo{db: db}
}

const characterColumns = `id, level, experience, character_class,
	strength, intelligence, charisma, dexterity, wisdom, constitution,
	created_at, updated_at`

// Get returns the singleton character, or nil when it has not been created yet.
func (r *CharacterRepo) Get(ctx context.Context) (*Character, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = ?`, MainCharacterID)

	var (
		c                Character
		created, updated int64
	)
	if err := row.Scan(
		&c.ID, &c.Level, &c.Experience, &c.Class,
		&c.Attributes.Strength, &c.Attributes.Intelligence, &c.Attributes.Charisma,
		&c.Attributes.Dexterity, &c.Attributes.Wisdom, &c.Attributes.Constitution,
		&created, &updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("character get: %w", err)
	}
	c.CreatedAt = fromUnix(created)
	c.UpdatedAt = fromUnix(updated)
	return &c, nil
}

// Replace writes the full character row, creating it if missing.
func (r *CharacterRepo) Replace(ctx context.Context, c *Character) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO characters (`+characterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, MainCharacterID, c.Level, c.Experience, c.Class,
		c.Attributes.Strength, c.Attributes.Intelligence, c.Attributes.Charisma,
		c.Attributes.Dexterity, c.Attributes.Wisdom, c.Attributes.Constitution,
		toUnix(c.CreatedAt), toUnix(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("character replace: %w", err)
	}
	c.ID = MainCharacterID
	return nil
}

func (r *CharacterRepo) UpdateExperience(ctx context.Context, experience int64, level int, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE characters SET experience = ?, level = ?, updated_at = ? WHERE id = ?
	`, experience, level, toUnix(now), MainCharacterID)
	if err != nil {
		return fmt.Errorf("character update experience: %w", err)
	}
	return nil
}

func (r *CharacterRepo) UpdateAttributes(ctx context.Context, a Attributes, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE characters
		SET strength = ?, intelligence = ?, charisma = ?, dexterity = ?, wisdom = ?, constitution = ?, updated_at = ?
		WHERE id = ?
	`, a.Strength, a.Intelligence, a.Charisma, a.Dexterity, a.Wisdom, a.Constitution, toUnix(now), MainCharacterID)
	if err != nil {
		return fmt.Errorf("character update attributes: %w", err)
	}
	return nil
}

func (r *CharacterRepo) UpdateClass(ctx context.Context, class string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE characters SET character_class = ?, updated_at = ? WHERE id = ?`, class, toUnix(now), MainCharacterID)
	if err != nil {
		return fmt.Errorf("character update class: %w", err)
	}
	return nil
}
