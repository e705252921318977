package repository

import (
	"context"
	"database/sql"
)

// HashRepo handles the notable-hash set used to flag hash hits.
type HashRepo struct {
	db *sql.DB
}

func NewHashRepo(db *sql.DB) *HashRepo { return &HashRepo{db: db} }

func (r *HashRepo) Add(ctx context.Context, h NotableHash) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO notable_hashes(sha256, label) VALUES (?, ?)
	ON CONFLICT(sha256) DO UPDATE SET label=excluded.label;
	`, h.SHA256, h.Label)
	return err
}

func (r *HashRepo) Has(ctx context.Context, sha256 string) (bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT 1 FROM notable_hashes WHERE sha256 = ?`, sha256)
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
