package repository

import (
	"context"
	"database/sql"
	"time"
)

// SeenRepo persists per-group seen marks keyed by the group key string.
type SeenRepo struct {
	db *sql.DB
}

func NewSeenRepo(db *sql.DB) *SeenRepo { return &SeenRepo{db: db} }

func (r *SeenRepo) Set(ctx context.Context, groupKey string, seen bool) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO group_seen(group_key, seen, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(group_key) DO UPDATE SET seen=excluded.seen, updated_at=excluded.updated_at;
	`, groupKey, boolToInt(seen), time.Now().UTC())
	return err
}

func (r *SeenRepo) Get(ctx context.Context, groupKey string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT seen FROM group_seen WHERE group_key = ?`, groupKey)
	var seen int
	if err := row.Scan(&seen); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return seen != 0, nil
}

// All returns every recorded seen mark.
func (r *SeenRepo) All(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT group_key, seen FROM group_seen`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]bool{}
	for rows.Next() {
		var key string
		var seen int
		if err := rows.Scan(&key, &seen); err != nil {
			return nil, err
		}
		out[key] = seen != 0
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
