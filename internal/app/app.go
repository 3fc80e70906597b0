package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/api"
	"github.com/PawelWisn/Fleet-Flow/internal/backend"
	"github.com/PawelWisn/Fleet-Flow/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

// Config describes user-provided application options.
type Config struct {
	APIURL       string
	Timeout      time.Duration
	PageSize     int
	SearchDelay  time.Duration
	PollInterval time.Duration
	DownloadDir  string
	Width        int
	Height       int
	ShowFooter   bool
	Verbose      bool
	RootMenu     string
	Email        string
	StaticCursor bool
}

// Run bootstraps and executes the Bubble Tea program.
func Run(cfg Config) error {
	client, err := api.New(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.Timeout})
	if err != nil {
		return fmt.Errorf("create api client: %w", err)
	}
	watcher := backend.NewWatcher(client, cfg.PollInterval)
	defer watcher.Stop()
	model := ui.NewModel(Options(cfg, client, watcher))
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Options maps cfg onto the UI model options.
func Options(cfg Config, client *api.Client, watcher *backend.Watcher) ui.Options {
	return ui.Options{
		Client:       client,
		Watcher:      watcher,
		Width:        cfg.Width,
		Height:       cfg.Height,
		ShowFooter:   cfg.ShowFooter,
		Verbose:      cfg.Verbose,
		RootMenu:     cfg.RootMenu,
		PageSize:     cfg.PageSize,
		SearchDelay:  cfg.SearchDelay,
		DownloadDir:  cfg.DownloadDir,
		Email:        cfg.Email,
		StaticCursor: cfg.StaticCursor,
	}
}
