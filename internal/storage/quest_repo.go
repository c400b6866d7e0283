package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type QuestRepo struct {
	db DBTX
}

func NewQuestRepo(db DBTX) *QuestRepo {
	return &QuestRepo{db: db}
}

const questColumns = `id, title, description, quest_type, target_value, current_progress,
	category, habit_id, status, reward_exp, deadline, week, created_at, updated_at`

// Insert stores q and sets its ID.
func (r *QuestRepo) Insert(ctx context.Context, q *Quest) error {
	status := q.Status
	if status == "" {
		status = "Active"
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO quests (title, description, quest_type, target_value, current_progress,
			category, habit_id, status, reward_exp, deadline, week, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, q.Title, q.Description, q.Type, q.TargetValue, q.CurrentProgress,
		nullString(q.Category), nullInt64(q.HabitID), status, q.RewardExp,
		nullUnix(q.Deadline), q.Week, toUnix(q.CreatedAt), toUnix(q.UpdatedAt))
	if err != nil {
		return fmt.Errorf("quest insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("quest last insert id: %w", err)
	}
	q.ID = id
	q.Status = status
	return nil
}

func (r *QuestRepo) Get(ctx context.Context, id int64) (*Quest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+questColumns+` FROM quests WHERE id = ?`, id)
	return scanQuestRow(row)
}

func (r *QuestRepo) ListAll(ctx context.Context) ([]Quest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+questColumns+` FROM quests ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("quest list: %w", err)
	}
	return collectQuests(rows)
}

func (r *QuestRepo) ListByWeek(ctx context.Context, week string) ([]Quest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+questColumns+` FROM quests WHERE week = ? ORDER BY id ASC`, week)
	if err != nil {
		return nil, fmt.Errorf("quest list by week: %w", err)
	}
	return collectQuests(rows)
}

// ListActive returns Active quests by deadline, optionally restricted to one week.
// Quests without a deadline sort last.
func (r *QuestRepo) ListActive(ctx context.Context, week string) ([]Quest, error) {
	query := `SELECT ` + questColumns + ` FROM quests WHERE status = 'Active'`
	var args []any
	if week != "" {
		query += ` AND week = ?`
		args = append(args, week)
	}
	query += ` ORDER BY deadline IS NULL, deadline ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("quest list active: %w", err)
	}
	return collectQuests(rows)
}

func (r *QuestRepo) CountByWeek(ctx context.Context, week string) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quests WHERE week = ?`, week)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("quest count by week: %w", err)
	}
	return n, nil
}

func (r *QuestRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quests WHERE status = ?`, status)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("quest count by status: %w", err)
	}
	return n, nil
}

func (r *QuestRepo) UpdateProgress(ctx context.Context, id int64, progress int, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE quests SET current_progress = ?, updated_at = ? WHERE id = ?`, progress, toUnix(now), id)
	if err != nil {
		return fmt.Errorf("quest update progress: %w", err)
	}
	return nil
}

// Complete moves an Active quest to Completed with the given progress.
// It reports false when the quest was not Active.
func (r *QuestRepo) Complete(ctx context.Context, id int64, progress int, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quests SET status = 'Completed', current_progress = ?, updated_at = ?
		WHERE id = ? AND status = 'Active'
	`, progress, toUnix(now), id)
	if err != nil {
		return false, fmt.Errorf("quest complete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("quest complete rows affected: %w", err)
	}
	return n > 0, nil
}

// ExpireOverdue marks every Active quest whose deadline has been reached as Expired.
func (r *QuestRepo) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quests SET status = 'Expired', updated_at = ?
		WHERE status = 'Active' AND deadline IS NOT NULL AND deadline <= ?
	`, toUnix(now), toUnix(now))
	if err != nil {
		return 0, fmt.Errorf("quest expire overdue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("quest expire rows affected: %w", err)
	}
	return int(n), nil
}

func (r *QuestRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quests WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("quest delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("quest delete rows affected: %w", err)
	}
	return n > 0, nil
}

func collectQuests(rows *sql.Rows) ([]Quest, error) {
	defer rows.Close()

	var out []Quest
	for rows.Next() {
		q, err := scanQuestRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quest rows: %w", err)
	}
	return out, nil
}

func scanQuestRow(row scanner) (*Quest, error) {
	var (
		q                    Quest
		category             sql.NullString
		habitID, deadline    sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := row.Scan(
		&q.ID, &q.Title, &q.Description, &q.Type, &q.TargetValue, &q.CurrentProgress,
		&category, &habitID, &q.Status, &q.RewardExp, &deadline, &q.Week, &createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("quest scan: %w", err)
	}
	if category.Valid {
		v := category.String
		q.Category = &v
	}
	if habitID.Valid {
		v := habitID.Int64
		q.HabitID = &v
	}
	q.Deadline = timePtr(deadline)
	q.CreatedAt = fromUnix(createdAt)
	q.UpdatedAt = fromUnix(updatedAt)
	return &q, nil
}

func nullString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
