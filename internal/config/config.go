package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PawelWisn/Fleet-Flow/internal/app"
	"github.com/PawelWisn/Fleet-Flow/internal/paging"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config captures runtime configuration for the application.
type Config struct {
	App      app.Config
	Logging  Logging
	Features Features
	Flags    map[string]string
	Args     []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

type Features struct {
	Verbose bool
}

// Settings is the file and environment layer. Every field can be set in the
// YAML file or as FLEETFLOW_<NAME> in the environment.
type Settings struct {
	APIURL       string        `yaml:"api_url" envconfig:"API_URL"`
	Timeout      time.Duration `yaml:"timeout" split_words:"true"`
	PageSize     int           `yaml:"page_size" split_words:"true"`
	SearchDelay  time.Duration `yaml:"search_delay" split_words:"true"`
	PollInterval time.Duration `yaml:"poll_interval" split_words:"true"`
	DownloadDir  string        `yaml:"download_dir" split_words:"true"`
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
	Footer       bool          `yaml:"footer"`
	Verbose      bool          `yaml:"verbose"`
	Trace        bool          `yaml:"trace"`
	LogFile      string        `yaml:"log_file" split_words:"true"`
	Root         string        `yaml:"root"`
	Email        string        `yaml:"email"`
	StaticCursor bool          `yaml:"static_cursor" split_words:"true"`
}

const (
	envPrefix     = "FLEETFLOW"
	envConfigFile = "FLEETFLOW_CONFIG"
	dotenvFile    = ".env"
)

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		APIURL:       "http://localhost:8000/api",
		Timeout:      10 * time.Second,
		PageSize:     paging.DefaultSize,
		SearchDelay:  300 * time.Millisecond,
		PollInterval: 30 * time.Second,
		DownloadDir:  ".",
	}
}

// Load parses configuration from the config file, .env, the environment and
// CLI arguments.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs layers defaults, the YAML file, .env, FLEETFLOW_* variables and
// args, later layers winning.
func LoadArgs(args []string) (Config, error) {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", dotenvFile, err)
	}

	settings := Defaults()
	path := configPath(args)
	if path != "" {
		if err := readFile(path, &settings); err != nil {
			return Config{}, err
		}
	}
	if err := envconfig.Process(envPrefix, &settings); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}

	fs := flag.NewFlagSet("fleetflow", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	fs.String("config", path, "path to a YAML config file")
	apiURL := fs.String("api-url", settings.APIURL, "base URL of the Fleet-Flow API")
	timeout := fs.Duration("timeout", settings.Timeout, "HTTP request timeout")
	pageSize := fs.Int("page-size", settings.PageSize, "rows per list page")
	searchDelay := fs.Duration("search-delay", settings.SearchDelay, "quiet period before a typed search is sent")
	pollInterval := fs.Duration("poll-interval", settings.PollInterval, "interval between session and upcoming reservation polls")
	downloadDir := fs.String("download-dir", settings.DownloadDir, "directory for downloaded documents and reports")
	width := fs.Int("width", settings.Width, "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", settings.Height, "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", settings.Footer, "enable footer hint row")
	trace := fs.Bool("trace", settings.Trace, "enable verbose JSON trace logging")
	verbose := fs.Bool("verbose", settings.Verbose, "print success messages for actions")
	logFile := fs.String("log-file", settings.LogFile, "path to the log file")
	root := fs.String("root", settings.Root, "open a menu or list instead of the main menu")
	email := fs.String("email", settings.Email, "email prefilled on the sign-in screen")
	staticCursor := fs.Bool("static-cursor", settings.StaticCursor, "disable the filter cursor blink")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(os.Stderr)
			fs.PrintDefaults()
		}
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			APIURL:       strings.TrimSpace(*apiURL),
			Timeout:      *timeout,
			PageSize:     *pageSize,
			SearchDelay:  *searchDelay,
			PollInterval: *pollInterval,
			DownloadDir:  *downloadDir,
			Width:        *width,
			Height:       *height,
			ShowFooter:   *footer,
			Verbose:      *verbose,
			RootMenu:     *root,
			Email:        *email,
			StaticCursor: *staticCursor,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Features: Features{
			Verbose: *verbose,
		},
		Flags: map[string]string{
			"config":       path,
			"apiURL":       *apiURL,
			"timeout":      timeout.String(),
			"pageSize":     strconv.Itoa(*pageSize),
			"searchDelay":  searchDelay.String(),
			"pollInterval": pollInterval.String(),
			"downloadDir":  *downloadDir,
			"width":        strconv.Itoa(*width),
			"height":       strconv.Itoa(*height),
			"footer":       strconv.FormatBool(*footer),
			"trace":        strconv.FormatBool(*trace),
			"verbose":      strconv.FormatBool(*verbose),
			"logFile":      *logFile,
			"root":         *root,
			"email":        *email,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

// configPath finds -config in args before the flag set exists, falling back
// to FLEETFLOW_CONFIG.
func configPath(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if value, ok := strings.CutPrefix(name, "config="); ok {
			return value
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return strings.TrimSpace(os.Getenv(envConfigFile))
}

func readFile(path string, settings *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, settings); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate ensures the configuration can start a session.
func Validate(cfg Config) error {
	a := cfg.App
	base, err := url.Parse(a.APIURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return fmt.Errorf("api url must be an absolute http(s) URL (got %q)", a.APIURL)
	}
	if a.PageSize <= 0 {
		return fmt.Errorf("page size must be > 0 (got %d)", a.PageSize)
	}
	if !slices.Contains(paging.Sizes, a.PageSize) {
		return fmt.Errorf("page size must be one of %v (got %d)", paging.Sizes, a.PageSize)
	}
	if a.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", a.Width)
	}
	if a.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", a.Height)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %s)", a.Timeout)
	}
	if a.SearchDelay < 0 {
		return fmt.Errorf("search delay must be >= 0 (got %s)", a.SearchDelay)
	}
	if a.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0 (got %s)", a.PollInterval)
	}
	return nil
}
