package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type AchievementRepo struct {
	db DBTX
}

func NewAchievementRepo(db DBTX) *AchievementRepo {
	return &AchievementRepo{db: db}
}

type AchievementInsert struct {
	Name          string
	Description   string
	Type          string
	RequiredValue int
	Icon          string
	CreatedAt     time.Time
}

const achievementColumns = `id, name, description, achievement_type, required_value, icon, status, earned_at, created_at, updated_at`

func (r *AchievementRepo) Insert(ctx context.Context, in AchievementInsert) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO achievements (name, description, achievement_type, required_value, icon, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'Locked', ?, ?)
	`, in.Name, in.Description, in.Type, in.RequiredValue, in.Icon, toUnix(in.CreatedAt), toUnix(in.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("achievement insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("achievement last insert id: %w", err)
	}
	return id, nil
}

func (r *AchievementRepo) Get(ctx context.Context, id int64) (*Achievement, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+achievementColumns+` FROM achievements WHERE id = ?`, id)
	return scanAchievementRow(row)
}

func (r *AchievementRepo) ListAll(ctx context.Context) ([]Achievement, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+achievementColumns+` FROM achievements ORDER BY achievement_type ASC, required_value ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("achievement list: %w", err)
	}
	return collectAchievements(rows)
}

func (r *AchievementRepo) ListByStatus(ctx context.Context, status string) ([]Achievement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+achievementColumns+` FROM achievements
		WHERE status = ?
		ORDER BY achievement_type ASC, required_value ASC, id ASC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("achievement list by status: %w", err)
	}
	return collectAchievements(rows)
}

// Promote moves an achievement from one status to another.
// It reports false when the achievement was not in the expected status.
func (r *AchievementRepo) Promote(ctx context.Context, id int64, from, to string, now time.Time) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if to == "Earned" {
		// earned_at is written once and never cleared.
		res, err = r.db.ExecContext(ctx, `
			UPDATE achievements SET status = ?, earned_at = COALESCE(earned_at, ?), updated_at = ?
			WHERE id = ? AND status = ?
		`, to, toUnix(now), toUnix(now), id, from)
	} else {
		res, err = r.db.ExecContext(ctx, `
			UPDATE achievements SET status = ?, updated_at = ? WHERE id = ? AND status = ?
		`, to, toUnix(now), id, from)
	}
	if err != nil {
		return false, fmt.Errorf("achievement promote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("achievement promote rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *AchievementRepo) Count(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM achievements`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("achievement count: %w", err)
	}
	return n, nil
}

func (r *AchievementRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM achievements WHERE status = ?`, status)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("achievement count by status: %w", err)
	}
	return n, nil
}

func collectAchievements(rows *sql.Rows) ([]Achievement, error) {
	defer rows.Close()

	var out []Achievement
	for rows.Next() {
		a, err := scanAchievementRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("achievement rows: %w", err)
	}
	return out, nil
}

func scanAchievementRow(row scanner) (*Achievement, error) {
	var (
		a                    Achievement
		earnedAt             sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := row.Scan(
		&a.ID, &a.Name, &a.Description, &a.Type, &a.RequiredValue, &a.Icon, &a.Status,
		&earnedAt, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("achievement scan: %w", err)
	}
	a.EarnedAt = timePtr(earnedAt)
	a.CreatedAt = fromUnix(createdAt)
	a.UpdatedAt = fromUnix(updatedAt)
	return &a, nil
}
