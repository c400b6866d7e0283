package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type HabitRepo struct {
	db DBTX
}

func NewHabitRepo(db DBTX) *HabitRepo {
	return &HabitRepo{db: db}
}

type HabitInsert struct {
	Title       string
	Type        string
	TargetValue *int
	CreatedAt   time.Time
}

const habitColumns = `id, title, habit_type, target_value, current_streak, created_at, updated_at`

func (r *HabitRepo) Insert(ctx context.Context, in HabitInsert) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO habits (title, habit_type, target_value, current_streak, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
	`, in.Title, in.Type, nullInt(in.TargetValue), toUnix(in.CreatedAt), toUnix(in.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("habit insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("habit last insert id: %w", err)
	}
	return id, nil
}

func (r *HabitRepo) Get(ctx context.Context, id int64) (*Habit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	return scanHabitRow(row)
}

func (r *HabitRepo) ListAll(ctx context.Context) ([]Habit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+habitColumns+` FROM habits ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("habit list: %w", err)
	}
	defer rows.Close()

	var out []Habit
	for rows.Next() {
		h, err := scanHabitRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit list rows: %w", err)
	}
	return out, nil
}

// Update rewrites the editable fields of a habit.
func (r *HabitRepo) Update(ctx context.Context, h *Habit) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE habits SET title = ?, habit_type = ?, target_value = ?, updated_at = ? WHERE id = ?
	`, h.Title, h.Type, nullInt(h.TargetValue), toUnix(h.UpdatedAt), h.ID)
	if err != nil {
		return fmt.Errorf("habit update: %w", err)
	}
	return nil
}

func (r *HabitRepo) UpdateStreak(ctx context.Context, id int64, streak int, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE habits SET current_streak = ?, updated_at = ? WHERE id = ?`, streak, toUnix(now), id)
	if err != nil {
		return fmt.Errorf("habit update streak: %w", err)
	}
	return nil
}

// Delete removes a habit; its entries go with it via ON DELETE CASCADE.
func (r *HabitRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("habit delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("habit delete rows affected: %w", err)
	}
	return n > 0, nil
}

// MaxStreak returns the highest cached streak across all habits, 0 when none exist.
func (r *HabitRepo) MaxStreak(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(current_streak), 0) FROM habits`)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("habit max streak: %w", err)
	}
	return n, nil
}

// TopStreak returns the habit with the highest cached streak (lowest id on ties).
func (r *HabitRepo) TopStreak(ctx context.Context) (*Habit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits ORDER BY current_streak DESC, id ASC LIMIT 1`)
	return scanHabitRow(row)
}

type HabitEntryUpsert struct {
	HabitID   int64
	Date      string
	Completed bool
	Value     int
	CreatedAt time.Time
}

// UpsertEntry writes the entry for (habit, date), replacing any existing one.
func (r *HabitRepo) UpsertEntry(ctx context.Context, in HabitEntryUpsert) (*HabitEntry, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO habit_entries (habit_id, date, completed, value, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, date) DO UPDATE SET
			completed = excluded.completed,
			value = excluded.value,
			created_at = excluded.created_at
	`, in.HabitID, in.Date, boolToInt(in.Completed), in.Value, toUnix(in.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("habit entry upsert: %w", err)
	}
	e, err := r.GetEntry(ctx, in.HabitID, in.Date)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("habit entry upsert: entry for %s vanished", in.Date)
	}
	return e, nil
}

const habitEntryColumns = `id, habit_id, date, completed, value, created_at`

func (r *HabitRepo) GetEntry(ctx context.Context, habitID int64, date string) (*HabitEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+habitEntryColumns+` FROM habit_entries
		WHERE habit_id = ? AND date = ?
		ORDER BY created_at DESC, id DESC LIMIT 1
	`, habitID, date)
	return scanHabitEntryRow(row)
}

// ListEntries returns a habit's entries, most recent date first.
func (r *HabitRepo) ListEntries(ctx context.Context, habitID int64) ([]HabitEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+habitEntryColumns+` FROM habit_entries
		WHERE habit_id = ?
		ORDER BY date DESC, created_at DESC
	`, habitID)
	if err != nil {
		return nil, fmt.Errorf("habit entry list: %w", err)
	}
	return collectHabitEntries(rows)
}

// ListEntriesByDate returns every habit's entry for one date.
func (r *HabitRepo) ListEntriesByDate(ctx context.Context, date string) ([]HabitEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+habitEntryColumns+` FROM habit_entries
		WHERE date = ?
		ORDER BY habit_id ASC
	`, date)
	if err != nil {
		return nil, fmt.Errorf("habit entry list by date: %w", err)
	}
	return collectHabitEntries(rows)
}

func collectHabitEntries(rows *sql.Rows) ([]HabitEntry, error) {
	defer rows.Close()

	var out []HabitEntry
	for rows.Next() {
		e, err := scanHabitEntryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit entry rows: %w", err)
	}
	return out, nil
}

func scanHabitRow(row scanner) (*Habit, error) {
	var (
		h                    Habit
		target               sql.NullInt64
		createdAt, updatedAt int64
	)
	if err := row.Scan(&h.ID, &h.Title, &h.Type, &target, &h.CurrentStreak, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("habit scan: %w", err)
	}
	if target.Valid {
		v := int(target.Int64)
		h.TargetValue = &v
	}
	h.CreatedAt = fromUnix(createdAt)
	h.UpdatedAt = fromUnix(updatedAt)
	return &h, nil
}

func scanHabitEntryRow(row scanner) (*HabitEntry, error) {
	var (
		e         HabitEntry
		completed int
		createdAt int64
	)
	if err := row.Scan(&e.ID, &e.HabitID, &e.Date, &completed, &e.Value, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("habit entry scan: %w", err)
	}
	e.Completed = completed != 0
	e.CreatedAt = fromUnix(createdAt)
	return &e, nil
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
