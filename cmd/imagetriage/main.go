package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"imagetriage/internal/config"
	"imagetriage/internal/database"
	"imagetriage/internal/database/repository"
	"imagetriage/internal/gallery"
	"imagetriage/internal/service"
	"imagetriage/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// a scan root on the command line overrides the config
	if len(os.Args) > 1 {
		cfg.Scan.Root = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path, "internal/database/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// repositories
	fileRepo := repository.NewFileRepo(db)
	tagRepo := repository.NewTagRepo(db)
	seenRepo := repository.NewSeenRepo(db)
	hashRepo := repository.NewHashRepo(db)

	if err := tagRepo.SeedDefaults(ctx); err != nil {
		log.Fatalf("seed tags: %v", err)
	}

	groupBy := gallery.ByFolder
	if cfg.UI.GroupBy == "tag" {
		groupBy = gallery.ByTag
	}
	manager := gallery.NewManager(fileRepo, tagRepo, seenRepo, groupBy)
	sortRef := gallery.NewSortRef(gallery.ParseSortOrder(cfg.UI.SortOrder))

	scanner := &service.Scanner{
		Files:      fileRepo,
		Hashes:     hashRepo,
		Extensions: cfg.Scan.Extensions,
	}

	if cfg.Scan.Root != "" {
		if _, err := scanner.Scan(ctx, cfg.Scan.Root); err != nil {
			log.Fatalf("scan %s: %v", cfg.Scan.Root, err)
		}
	}

	app := tui.New(ctx, cfg, manager, scanner, sortRef)
	p := tea.NewProgram(app, tea.WithAltScreen())
	app.SetSender(p.Send)
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui: %v", err)
	}

	// persist the grouping and sort order picked during the session
	cfg.UI.GroupBy = "folder"
	if manager.GroupBy() == gallery.ByTag {
		cfg.UI.GroupBy = "tag"
	}
	cfg.UI.SortOrder = sortRef.Get().String()
	if err := config.Save(cfg); err != nil {
		log.Printf("save config: %v", err)
	}
}
