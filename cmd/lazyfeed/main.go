package main

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sujaltv/lazyfeed/internal/config"
	"github.com/sujaltv/lazyfeed/internal/fetch"
	"github.com/sujaltv/lazyfeed/internal/storage"
	"github.com/sujaltv/lazyfeed/internal/tui"
)

func main() {
	cfgPath, err := config.Path()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	dbPath, err := config.DBPath()
	if err != nil {
		log.Fatalf("storage error: %v", err)
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := store.Init(ctx); err != nil {
		log.Fatalf("storage schema error: %v", err)
	}
	if err := store.SyncFeedsFromConfig(ctx, configFeeds(&cfg)); err != nil {
		log.Fatalf("feed sync error: %v", err)
	}

	fetcher := fetch.New(nil)
	model := tui.NewModel(store, fetcher, &cfg, cfgPath)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}

func configFeeds(cfg *config.Config) []storage.ConfigFeed {
	flat := cfg.CollectFeeds()
	out := make([]storage.ConfigFeed, 0, len(flat))
	for _, f := range flat {
		out = append(out, storage.ConfigFeed{
			GroupPath: f.GroupPath,
			Title:     f.Source.Title,
			URL:       f.Source.FetchURL(),
			SiteURL:   f.Source.URL,
		})
	}
	return out
}
