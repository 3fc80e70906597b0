package app

import (
	"testing"
	"time"
)

func TestOptionsCopiesSettings(t *testing.T) {
	cfg := Config{
		PageSize:     25,
		SearchDelay:  200 * time.Millisecond,
		DownloadDir:  "/tmp/downloads",
		Width:        100,
		Height:       30,
		ShowFooter:   true,
		RootMenu:     "vehicles",
		Email:        "mia@fleet.test",
		StaticCursor: true,
	}
	opts := Options(cfg, nil, nil)
	if opts.PageSize != 25 || opts.SearchDelay != 200*time.Millisecond {
		t.Fatalf("expected list settings copied, got %+v", opts)
	}
	if opts.RootMenu != "vehicles" || opts.Email != "mia@fleet.test" {
		t.Fatalf("expected session settings copied, got %+v", opts)
	}
	if opts.Width != 100 || opts.Height != 30 || !opts.ShowFooter || !opts.StaticCursor {
		t.Fatalf("expected view settings copied, got %+v", opts)
	}
	if opts.DownloadDir != "/tmp/downloads" {
		t.Fatalf("expected download dir, got %q", opts.DownloadDir)
	}
}

func TestRunRejectsRelativeURL(t *testing.T) {
	if err := Run(Config{APIURL: "/api"}); err == nil {
		t.Fatalf("expected error for relative api url")
	}
}
