package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leth4/leto-sub000/internal/config"
	"github.com/leth4/leto-sub000/internal/geometry"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoad_OverridesAndNormalizes(t *testing.T) {
	home, _ := os.UserHomeDir()
	path := filepath.Join(t.TempDir(), "board.yaml")
	const doc = `
root: ~/boards
ui:
  offset: {x: 0, y: 30}
board:
  fontSize: 0
history:
  limit: 50
save:
  maxAttempts: -3
journal:
  driver: postgres
  host: db.local
  user: leto
  keep: 5
spellcheck:
  enabled: true
  userWords: [leto, kanban]
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Root != filepath.Join(home, "boards") {
		t.Errorf("root = %q", cfg.Root)
	}
	if cfg.UI.Offset != (geometry.Vec{X: 0, Y: 30}) {
		t.Errorf("offset = %v", cfg.UI.Offset)
	}
	if cfg.Board.FontSize != 16 {
		t.Errorf("font size = %v, want default", cfg.Board.FontSize)
	}
	if cfg.History.Limit != 50 || cfg.Save.MaxAttempts != 0 {
		t.Errorf("history=%d maxAttempts=%d", cfg.History.Limit, cfg.Save.MaxAttempts)
	}
	if cfg.Journal.Driver != "postgres" || cfg.Journal.Keep != 5 || cfg.Journal.PruneSchedule != "@every 10m" {
		t.Errorf("journal = %+v", cfg.Journal)
	}
	if !cfg.Journal.Enabled {
		t.Error("journal should stay enabled when not mentioned")
	}
	if diff := cmp.Diff([]string{"leto", "kanban"}, cfg.Spellcheck.UserWords); diff != "" {
		t.Errorf("user words (-want +got):\n%s", diff)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte("ui: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestDefaultPath_Env(t *testing.T) {
	t.Setenv(config.EnvConfigPath, "/etc/leto.yaml")
	if got := config.DefaultPath(); got != "/etc/leto.yaml" {
		t.Errorf("path = %q", got)
	}
}
