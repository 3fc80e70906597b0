package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/PawelWisn/Fleet-Flow/internal/app"
	"github.com/PawelWisn/Fleet-Flow/internal/config"
	"github.com/PawelWisn/Fleet-Flow/internal/logging"
	"github.com/PawelWisn/Fleet-Flow/internal/logging/events"
	"golang.org/x/term"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.LoadArgs(args)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return exitOK
	case err == nil:
		err = config.Validate(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return exitUsage
	}

	logging.Configure(cfg.Logging.FilePath)
	defer logging.Close()
	logging.SetTraceEnabled(cfg.Logging.Trace)
	events.App.Start(startupFields(cfg, probeTerminals()))

	if err := app.Run(cfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	return exitOK
}

// terminal describes one standard descriptor as seen at startup.
type terminal struct {
	Name   string `json:"name"`
	TTY    bool   `json:"tty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Err    string `json:"error,omitempty"`
}

func probeTerminals() []terminal {
	files := []*os.File{os.Stdin, os.Stdout, os.Stderr}
	names := []string{"stdin", "stdout", "stderr"}
	out := make([]terminal, len(files))
	for i, f := range files {
		out[i] = probe(names[i], int(f.Fd()))
	}
	return out
}

func probe(name string, fd int) terminal {
	t := terminal{Name: name}
	if fd < 0 || !term.IsTerminal(fd) {
		return t
	}
	t.TTY = true
	var err error
	if t.Width, t.Height, err = term.GetSize(fd); err != nil {
		t.Err = err.Error()
	}
	return t
}

// startupFields is the payload of the app.start trace: the resolved flags,
// the working directory and which descriptors are terminals.
func startupFields(cfg config.Config, terminals []terminal) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags)+2)
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath

	fields := map[string]interface{}{
		"argv":      cfg.Args,
		"flags":     flags,
		"api":       cfg.App.APIURL,
		"terminals": terminals,
	}
	for _, t := range terminals {
		if t.TTY && t.Err == "" {
			fields["size"] = fmt.Sprintf("%dx%d", t.Width, t.Height)
			break
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		fields["cwd"] = cwd
	}
	return fields
}
