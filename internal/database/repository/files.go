package repository

import (
	"context"
	"database/sql"
)

// FileRepo handles drawable file rows.
type FileRepo struct {
	db *sql.DB
}

func NewFileRepo(db *sql.DB) *FileRepo { return &FileRepo{db: db} }

func (r *FileRepo) Insert(ctx context.Context, f DrawableFile) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO files(path, folder, name, sha256, size_bytes, category, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`, f.Path, f.Folder, f.Name, f.SHA256, f.SizeBytes, f.Category, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *FileRepo) ByPath(ctx context.Context, path string) (*DrawableFile, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, path, folder, name, sha256, size_bytes, category, created_at, updated_at
	FROM files WHERE path = ?`, path)
	return scanFile(row)
}

func (r *FileRepo) Get(ctx context.Context, id int64) (*DrawableFile, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, path, folder, name, sha256, size_bytes, category, created_at, updated_at
	FROM files WHERE id = ?`, id)
	return scanFile(row)
}

// List returns every file with tags attached and the hash-hit flag resolved
// against the notable_hashes table.
func (r *FileRepo) List(ctx context.Context) ([]DrawableFile, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT f.id, f.path, f.folder, f.name, f.sha256, f.size_bytes, f.category,
	       f.created_at, f.updated_at,
	       EXISTS (SELECT 1 FROM notable_hashes nh WHERE nh.sha256 = f.sha256)
	FROM files f
	ORDER BY f.folder, f.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DrawableFile
	index := map[int64]int{}
	for rows.Next() {
		var f DrawableFile
		if err := rows.Scan(&f.ID, &f.Path, &f.Folder, &f.Name, &f.SHA256, &f.SizeBytes,
			&f.Category, &f.CreatedAt, &f.UpdatedAt, &f.HashHit); err != nil {
			return nil, err
		}
		index[f.ID] = len(out)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := r.db.QueryContext(ctx, `
	SELECT ft.file_id, t.id, t.name
	FROM file_tags ft JOIN tag_names t ON t.id = ft.tag_id
	ORDER BY t.name`)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var fileID int64
		var t TagName
		if err := tagRows.Scan(&fileID, &t.ID, &t.Name); err != nil {
			return nil, err
		}
		if i, ok := index[fileID]; ok {
			out[i].Tags = append(out[i].Tags, t)
		}
	}
	return out, tagRows.Err()
}

func (r *FileRepo) UpdateCategory(ctx context.Context, id int64, category int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE files SET category = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, category, id)
	return err
}

func scanFile(row *sql.Row) (*DrawableFile, error) {
	var f DrawableFile
	err := row.Scan(&f.ID, &f.Path, &f.Folder, &f.Name, &f.SHA256, &f.SizeBytes,
		&f.Category, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}
