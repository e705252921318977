package repository

import "time"

// DrawableFile represents a files row. Category 0 means uncategorized.
type DrawableFile struct {
	ID        int64
	Path      string
	Folder    string
	Name      string
	SHA256    string
	SizeBytes int64
	Category  int
	CreatedAt time.Time
	UpdatedAt time.Time
	Tags      []TagName
	HashHit   bool
}

// TagName represents a tag_names row.
type TagName struct {
	ID   string
	Name string
}

// NotableHash represents a notable_hashes row.
type NotableHash struct {
	SHA256 string
	Label  string
}
