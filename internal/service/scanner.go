package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"imagetriage/internal/database"
	"imagetriage/internal/database/repository"
)

// ScanResult summarizes one directory scan.
type ScanResult struct {
	Imported int
	Skipped  int
	HashHits int
	Errors   []error
}

// Scanner walks an evidence directory and records drawable files.
type Scanner struct {
	Files      *repository.FileRepo
	Hashes     *repository.HashRepo
	Extensions []string
}

// Scan walks root, hashing and inserting every file whose extension is in
// the drawable set. Files already present (by path) are skipped. Per-file
// failures are collected in the result, not fatal.
func (s *Scanner) Scan(ctx context.Context, root string) (ScanResult, error) {
	var res ScanResult
	exts := map[string]struct{}{}
	for _, e := range s.Extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w", p, walkErr))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := exts[strings.ToLower(filepath.Ext(p))]; !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)

		existing, err := s.Files.ByPath(ctx, rel)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w", rel, err))
			return nil
		}
		if existing != nil {
			res.Skipped++
			return nil
		}

		sum, size, err := hashFile(p)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w", rel, err))
			return nil
		}

		folder := filepath.ToSlash(filepath.Dir(rel))
		now := database.Now()
		f := repository.DrawableFile{
			Path:      rel,
			Folder:    folder,
			Name:      filepath.Base(rel),
			SHA256:    sum,
			SizeBytes: size,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.Files.Insert(ctx, f); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w", rel, err))
			return nil
		}
		res.Imported++

		if s.Hashes != nil {
			hit, err := s.Hashes.Has(ctx, sum)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("%s: %w", rel, err))
			} else if hit {
				res.HashHits++
			}
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("walk %s: %w", root, err)
	}
	return res, nil
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
