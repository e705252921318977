package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"imagetriage/internal/database"
)

// TagRepo handles tag names and file-tag links.
type TagRepo struct {
	db *sql.DB
}

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{db: db} }

var defaultTagNames = []string{
	"Follow Up",
	"Notable",
	"Bookmark",
	"Reviewed",
	"Excluded",
}

// SeedDefaults ensures baseline tag names exist for new databases. The
// ids are derived from the names, so reseeding is stable. No-op once any
// tag name exists.
func (r *TagRepo) SeedDefaults(ctx context.Context) error {
	existing, err := r.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, name := range defaultTagNames {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte("tag:"+name)).String()
		if err := r.Upsert(ctx, TagName{ID: id, Name: name}); err != nil {
			return err
		}
	}
	return nil
}

func (r *TagRepo) Upsert(ctx context.Context, t TagName) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO tag_names(id, name) VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET name=excluded.name;
	`, t.ID, t.Name)
	return err
}

func (r *TagRepo) ByName(ctx context.Context, name string) (*TagName, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name FROM tag_names WHERE name = ?`, name)
	var t TagName
	if err := row.Scan(&t.ID, &t.Name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TagRepo) List(ctx context.Context) ([]TagName, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM tag_names ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TagName
	for rows.Next() {
		var t TagName
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TagRepo) Attach(ctx context.Context, fileID int64, tagID string) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO file_tags(file_id, tag_id) VALUES (?, ?)
	ON CONFLICT(file_id, tag_id) DO NOTHING;
	`, fileID, tagID)
	return err
}

func (r *TagRepo) Remove(ctx context.Context, fileID int64, tagID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM file_tags WHERE file_id = ? AND tag_id = ?`, fileID, tagID)
	return err
}

// AttachBatch links the tag to every file id in one transaction: a
// mid-batch failure persists none of the links.
func (r *TagRepo) AttachBatch(ctx context.Context, fileIDs []int64, tagID string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, id := range fileIDs {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO file_tags(file_id, tag_id) VALUES (?, ?)
			ON CONFLICT(file_id, tag_id) DO NOTHING;
			`, id, tagID); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveBatch unlinks the tag from every file id in one transaction.
func (r *TagRepo) RemoveBatch(ctx context.Context, fileIDs []int64, tagID string) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, id := range fileIDs {
			if _, err := tx.ExecContext(ctx, `DELETE FROM file_tags WHERE file_id = ? AND tag_id = ?`, id, tagID); err != nil {
				return err
			}
		}
		return nil
	})
}

// FileIDsByTag returns the ids of files carrying the given tag.
func (r *TagRepo) FileIDsByTag(ctx context.Context, tagID string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT file_id FROM file_tags WHERE tag_id = ? ORDER BY file_id`, tagID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
