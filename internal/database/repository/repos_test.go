package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"imagetriage/internal/database"
)

func setupRepoTest(t *testing.T) (*sql.DB, context.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	migrations, err := filepath.Abs("../migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, ctx
}

func TestFileRepo_InsertAndLookup(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	repo := NewFileRepo(db)

	now := database.Now()
	id, err := repo.Insert(ctx, DrawableFile{
		Path: "a/one.jpg", Folder: "a", Name: "one.jpg",
		SHA256: "s1", SizeBytes: 10, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	byPath, err := repo.ByPath(ctx, "a/one.jpg")
	require.NoError(t, err)
	require.NotNil(t, byPath)
	require.Equal(t, id, byPath.ID)
	require.Equal(t, "a", byPath.Folder)

	missing, err := repo.ByPath(ctx, "nope.jpg")
	require.NoError(t, err)
	require.Nil(t, missing)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "one.jpg", got.Name)

	require.NoError(t, repo.UpdateCategory(ctx, id, 2))
	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 2, got.Category)
}

func TestFileRepo_ListResolvesTagsAndHashHits(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	files := NewFileRepo(db)
	tags := NewTagRepo(db)
	hashes := NewHashRepo(db)

	now := database.Now()
	id1, err := files.Insert(ctx, DrawableFile{Path: "a/1.jpg", Folder: "a", Name: "1.jpg", SHA256: "notable", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	id2, err := files.Insert(ctx, DrawableFile{Path: "a/2.jpg", Folder: "a", Name: "2.jpg", SHA256: "plain", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	require.NoError(t, hashes.Add(ctx, NotableHash{SHA256: "notable", Label: "watchlist"}))
	require.NoError(t, tags.Upsert(ctx, TagName{ID: "t1", Name: "Notable"}))
	require.NoError(t, tags.Attach(ctx, id1, "t1"))

	list, err := files.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := map[int64]DrawableFile{}
	for _, f := range list {
		byID[f.ID] = f
	}
	require.True(t, byID[id1].HashHit)
	require.False(t, byID[id2].HashHit)
	require.Len(t, byID[id1].Tags, 1)
	require.Equal(t, "Notable", byID[id1].Tags[0].Name)
	require.Empty(t, byID[id2].Tags)
}

func TestTagRepo_Links(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	files := NewFileRepo(db)
	tags := NewTagRepo(db)

	now := database.Now()
	id, err := files.Insert(ctx, DrawableFile{Path: "a/1.jpg", Folder: "a", Name: "1.jpg", SHA256: "s", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	require.NoError(t, tags.Upsert(ctx, TagName{ID: "t1", Name: "Bookmark"}))
	got, err := tags.ByName(ctx, "Bookmark")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "t1", got.ID)

	missing, err := tags.ByName(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	require.NoError(t, tags.Attach(ctx, id, "t1"))
	require.NoError(t, tags.Attach(ctx, id, "t1")) // duplicate link is a no-op

	ids, err := tags.FileIDsByTag(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, []int64{id}, ids)

	require.NoError(t, tags.Remove(ctx, id, "t1"))
	ids, err = tags.FileIDsByTag(ctx, "t1")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestTagRepo_AttachBatchIsAtomic(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	files := NewFileRepo(db)
	tags := NewTagRepo(db)

	now := database.Now()
	id, err := files.Insert(ctx, DrawableFile{Path: "a/1.jpg", Folder: "a", Name: "1.jpg", SHA256: "s", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	require.NoError(t, tags.Upsert(ctx, TagName{ID: "t1", Name: "Notable"}))

	// a nonexistent file id violates the foreign key, so the whole batch
	// must roll back, including the valid link before it
	err = tags.AttachBatch(ctx, []int64{id, 99999}, "t1")
	require.Error(t, err)
	ids, err := tags.FileIDsByTag(ctx, "t1")
	require.NoError(t, err)
	require.Empty(t, ids)

	require.NoError(t, tags.AttachBatch(ctx, []int64{id}, "t1"))
	ids, err = tags.FileIDsByTag(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, []int64{id}, ids)

	require.NoError(t, tags.RemoveBatch(ctx, []int64{id}, "t1"))
	ids, err = tags.FileIDsByTag(ctx, "t1")
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestTagRepo_SeedDefaults(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	tags := NewTagRepo(db)

	require.NoError(t, tags.SeedDefaults(ctx))
	list, err := tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)

	// reseeding an already-seeded database changes nothing
	require.NoError(t, tags.SeedDefaults(ctx))
	again, err := tags.List(ctx)
	require.NoError(t, err)
	require.Equal(t, list, again)
}

func TestSeenRepo_Marks(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	repo := NewSeenRepo(db)

	seen, err := repo.Get(ctx, "folder:a")
	require.NoError(t, err)
	require.False(t, seen)

	require.NoError(t, repo.Set(ctx, "folder:a", true))
	require.NoError(t, repo.Set(ctx, "folder:b", false))

	seen, err = repo.Get(ctx, "folder:a")
	require.NoError(t, err)
	require.True(t, seen)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"folder:a": true, "folder:b": false}, all)

	// flipping back overwrites
	require.NoError(t, repo.Set(ctx, "folder:a", false))
	seen, err = repo.Get(ctx, "folder:a")
	require.NoError(t, err)
	require.False(t, seen)
}

func TestHashRepo_Membership(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	repo := NewHashRepo(db)

	has, err := repo.Has(ctx, "deadbeef")
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, repo.Add(ctx, NotableHash{SHA256: "deadbeef", Label: "set-a"}))
	require.NoError(t, repo.Add(ctx, NotableHash{SHA256: "deadbeef", Label: "set-b"})) // relabel

	has, err = repo.Has(ctx, "deadbeef")
	require.NoError(t, err)
	require.True(t, has)
}
