// Package config loads the board configuration from a YAML file. Every key is
// optional; missing keys keep their defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leth4/leto-sub000/internal/geometry"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "LETO_CONFIG"

type Config struct {
	// Root resolves relative board and image paths.
	Root string `yaml:"root"`

	UI         UIConfig         `yaml:"ui"`
	Board      BoardConfig      `yaml:"board"`
	History    HistoryConfig    `yaml:"history"`
	Save       SaveConfig       `yaml:"save"`
	Journal    JournalConfig    `yaml:"journal"`
	Spellcheck SpellcheckConfig `yaml:"spellcheck"`
	Export     ExportConfig     `yaml:"export"`
}

type UIConfig struct {
	// Offset is subtracted from raw pointer coordinates.
	Offset geometry.Vec `yaml:"offset"`
	// Viewport is the container size used to fit the selection.
	ViewportWidth  float64 `yaml:"viewportWidth"`
	ViewportHeight float64 `yaml:"viewportHeight"`
}

type BoardConfig struct {
	FontSize float64 `yaml:"fontSize"`
}

type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

type SaveConfig struct {
	// MaxAttempts bounds the write-verify loop; 0 retries forever.
	MaxAttempts int `yaml:"maxAttempts"`
}

// JournalConfig selects the revision journal database. Driver is sqlite,
// postgres or mysql. DSN wins over the individual connection fields.
type JournalConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Driver        string `yaml:"driver"`
	DSN           string `yaml:"dsn"`
	Path          string `yaml:"path"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Database      string `yaml:"database"`
	SSLMode       string `yaml:"sslMode"`
	Keep          int    `yaml:"keep"`
	PruneSchedule string `yaml:"pruneSchedule"`
}

type SpellcheckConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Dictionary string   `yaml:"dictionary"`
	UserWords  []string `yaml:"userWords"`
}

type ExportConfig struct {
	Padding float64 `yaml:"padding"`
	Scale   float64 `yaml:"scale"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		UI: UIConfig{
			ViewportWidth:  1280,
			ViewportHeight: 800,
		},
		Board:   BoardConfig{FontSize: 16},
		History: HistoryConfig{Limit: 200},
		Save:    SaveConfig{MaxAttempts: 8},
		Journal: JournalConfig{
			Enabled:       true,
			Driver:        "sqlite",
			Path:          filepath.Join(dataDir(), "journal.db"),
			Keep:          40,
			PruneSchedule: "@every 10m",
		},
		Export: ExportConfig{Padding: 40, Scale: 1},
	}
}

// DefaultPath returns $LETO_CONFIG or ~/.config/leto/board.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(homeDir(), ".config")
	}
	return filepath.Join(dir, "leto", "board.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize fills zero values a file may have written explicitly and
// expands ~ in paths.
func (c *Config) normalize() {
	d := Default()
	if c.Board.FontSize <= 0 {
		c.Board.FontSize = d.Board.FontSize
	}
	if c.History.Limit <= 0 {
		c.History.Limit = d.History.Limit
	}
	if c.Save.MaxAttempts < 0 {
		c.Save.MaxAttempts = 0
	}
	if c.Journal.Driver == "" {
		c.Journal.Driver = d.Journal.Driver
	}
	if c.Journal.Keep <= 0 {
		c.Journal.Keep = d.Journal.Keep
	}
	if c.Journal.PruneSchedule == "" {
		c.Journal.PruneSchedule = d.Journal.PruneSchedule
	}
	if c.Export.Scale <= 0 {
		c.Export.Scale = d.Export.Scale
	}
	if c.UI.ViewportWidth <= 0 || c.UI.ViewportHeight <= 0 {
		c.UI.ViewportWidth, c.UI.ViewportHeight = d.UI.ViewportWidth, d.UI.ViewportHeight
	}
	c.Root = ExpandHome(c.Root)
	c.Journal.Path = ExpandHome(c.Journal.Path)
	c.Spellcheck.Dictionary = ExpandHome(c.Spellcheck.Dictionary)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return home
}

func dataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "leto")
	}
	return filepath.Join(homeDir(), ".local", "share", "leto")
}
