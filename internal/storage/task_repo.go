package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type TaskRepo struct {
	db DBTX
}

func NewTaskRepo(db DBTX) *TaskRepo {
	return &TaskRepo{db: db}
}

type TaskInsert struct {
	Title       string
	GoalRelated bool
	CreatedAt   time.Time
}

const taskColumns = `id, title, completed, goal_related, created_at, updated_at`

func (r *TaskRepo) Insert(ctx context.Context, in TaskInsert) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (title, completed, goal_related, created_at, updated_at)
		VALUES (?, 0, ?, ?, ?)
	`, in.Title, boolToInt(in.GoalRelated), toUnix(in.CreatedAt), toUnix(in.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("task insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("task last insert id: %w", err)
	}
	return id, nil
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (*Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTaskRow(row)
}

// ListAll returns tasks newest first.
func (r *TaskRepo) ListAll(ctx context.Context) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("task list: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list rows: %w", err)
	}
	return out, nil
}

// ListIncomplete returns open tasks oldest first.
func (r *TaskRepo) ListIncomplete(ctx context.Context) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE completed = 0 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("task list incomplete: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list incomplete rows: %w", err)
	}
	return out, nil
}

func (r *TaskRepo) SetCompleted(ctx context.Context, id int64, completed bool, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET completed = ?, updated_at = ? WHERE id = ?`, boolToInt(completed), toUnix(now), id)
	if err != nil {
		return fmt.Errorf("task set completed: %w", err)
	}
	return nil
}

// Delete removes a task and reports whether a row existed.
func (r *TaskRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("task delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("task delete rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *TaskRepo) CountIncomplete(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE completed = 0`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("task count incomplete: %w", err)
	}
	return n, nil
}

func (r *TaskRepo) CountCompleted(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE completed = 1`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("task count completed: %w", err)
	}
	return n, nil
}

// CountCompletedSince counts completed tasks last updated at or after since.
// A non-empty category restricts the count to titles containing it (case-insensitive).
func (r *TaskRepo) CountCompletedSince(ctx context.Context, since time.Time, category string) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE completed = 1 AND updated_at >= ?`
	args := []any{toUnix(since)}
	if category != "" {
		// SQLite LOWER() only folds ASCII, so match in Go for non-ASCII categories.
		if !isASCII(category) {
			return r.countCompletedSinceFolded(ctx, since, category)
		}
		query += ` AND LOWER(title) LIKE ?`
		args = append(args, "%"+strings.ToLower(category)+"%")
	}
	row := r.db.QueryRowContext(ctx, query, args...)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("task count completed since: %w", err)
	}
	return n, nil
}

func (r *TaskRepo) countCompletedSinceFolded(ctx context.Context, since time.Time, category string) (int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title FROM tasks WHERE completed = 1 AND updated_at >= ?`, toUnix(since))
	if err != nil {
		return 0, fmt.Errorf("task count completed since: %w", err)
	}
	defer rows.Close()

	needle := strings.ToLower(category)
	n := 0
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return 0, fmt.Errorf("task count completed scan: %w", err)
		}
		if strings.Contains(strings.ToLower(title), needle) {
			n++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("task count completed rows: %w", err)
	}
	return n, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func scanTaskRow(row scanner) (*Task, error) {
	var (
		t                    Task
		completed, goal      int
		createdAt, updatedAt int64
	)
	if err := row.Scan(&t.ID, &t.Title, &completed, &goal, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("task scan: %w", err)
	}
	t.Completed = completed != 0
	t.GoalRelated = goal != 0
	t.CreatedAt = fromUnix(createdAt)
	t.UpdatedAt = fromUnix(updatedAt)
	return &t, nil
}
