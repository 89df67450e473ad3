package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.View.SortField != "default" {
		t.Errorf("expected default sort field, got %q", cfg.View.SortField)
	}
	if cfg.View.ExpandDepth != 1 {
		t.Errorf("expected expand depth 1, got %d", cfg.View.ExpandDepth)
	}
	if !cfg.Watch.Enabled || cfg.Watch.DebounceMs != 200 {
		t.Errorf("expected watching with 200ms debounce, got %+v", cfg.Watch)
	}
	if cfg.Favorites == nil {
		t.Error("expected favorites map to be initialized")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.View.SortField != "default" {
		t.Errorf("expected default config, got sort %q", cfg.View.SortField)
	}
}

func TestLoadFrom_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
sources:
  - name: roadmap
    path: ~/work/roadmap.yaml
  - name: db
    path: /absolute/items.db

favorites:
  1: roadmap

view:
  root_visible: true
  include_ancestors: true
  sort_field: priority
  filter: "status:open"

watch:
  debounce_ms: 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
	}
	// Path should have ~ expanded
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "work/roadmap.yaml"); cfg.Sources[0].Path != want {
		t.Errorf("expected expanded path %q, got %q", want, cfg.Sources[0].Path)
	}
	if cfg.Sources[1].Path != "/absolute/items.db" {
		t.Errorf("expected absolute path preserved, got %q", cfg.Sources[1].Path)
	}
	if src := cfg.FavoriteSource(1); src == nil || src.Name != "roadmap" {
		t.Errorf("expected favorite 1 to be roadmap, got %+v", src)
	}
	if !cfg.View.RootVisible || !cfg.View.IncludeAncestors || cfg.View.IncludeChildren {
		t.Errorf("unexpected view flags %+v", cfg.View)
	}
	if cfg.View.SortField != "priority" || cfg.View.Filter != "status:open" {
		t.Errorf("unexpected view %+v", cfg.View)
	}
	if cfg.Watch.DebounceMs != 50 || cfg.Watch.PollInterval != 2000 {
		t.Errorf("expected debounce override and default poll, got %+v", cfg.Watch)
	}
}

func TestLoadFrom_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
state_dir = "/tmp/treegrid-state"

[[sources]]
name = "outline"
path = "/data/outline.json"

[view]
include_children = true
sort_field = "label"
sort_descending = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "outline" {
		t.Errorf("unexpected sources %+v", cfg.Sources)
	}
	if !cfg.View.IncludeChildren || cfg.View.SortField != "label" || !cfg.View.SortDescending {
		t.Errorf("unexpected view %+v", cfg.View)
	}
	if cfg.ResolvedStateDir() != "/tmp/treegrid-state" {
		t.Errorf("expected state dir override, got %q", cfg.ResolvedStateDir())
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("TREEGRID_FILTER", "kind:bug")
	t.Setenv("TREEGRID_INCLUDE_CHILDREN", "true")
	t.Setenv("TREEGRID_WATCH_DEBOUNCE_MS", "10")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.View.Filter != "kind:bug" {
		t.Errorf("expected filter from env, got %q", cfg.View.Filter)
	}
	if !cfg.View.IncludeChildren {
		t.Error("expected include children from env")
	}
	if cfg.Watch.DebounceMs != 10 {
		t.Errorf("expected debounce 10, got %d", cfg.Watch.DebounceMs)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.Sources = []Source{{Name: "a", Path: "/a.yaml"}, {Name: "b", Path: "/b.json"}}
			cfg.View.SortField = "created"
			cfg.View.IncludeAncestors = true

			if err := SaveTo(cfg, path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			loaded, err := LoadFrom(path)
			if err != nil {
				t.Fatalf("Load after save failed: %v", err)
			}
			if len(loaded.Sources) != 2 || loaded.Sources[1].Name != "b" {
				t.Errorf("unexpected sources %+v", loaded.Sources)
			}
			if loaded.View.SortField != "created" || !loaded.View.IncludeAncestors {
				t.Errorf("unexpected view %+v", loaded.View)
			}
		})
	}
}

func TestFindSource(t *testing.T) {
	cfg := Config{
		Sources: []Source{
			{Name: "alpha", Path: "/a"},
			{Name: "Beta", Path: "/b"},
		},
	}
	if s := cfg.FindSource("alpha"); s == nil || s.Name != "alpha" {
		t.Error("expected to find 'alpha'")
	}
	// Case-insensitive
	if s := cfg.FindSource("BETA"); s == nil || s.Name != "Beta" {
		t.Error("expected to find 'Beta' case-insensitively")
	}
	if s := cfg.FindSource("nonexistent"); s != nil {
		t.Error("expected nil for nonexistent source")
	}
}

func TestSetFavorite(t *testing.T) {
	cfg := Config{}
	cfg.SetFavorite(1, "outline")
	if cfg.Favorites[1] != "outline" {
		t.Error("expected favorite 1 set to 'outline'")
	}
	cfg.SetFavorite(1, "")
	if _, ok := cfg.Favorites[1]; ok {
		t.Error("expected favorite 1 to be cleared")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}
	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
	}
	for _, tt := range tests {
		if got := expandHome(tt.input); got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestXDGOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)

	if got := ConfigDir(); got != filepath.Join(dir, "treegrid") {
		t.Errorf("unexpected config dir %q", got)
	}
	if got := StateDir(); got != filepath.Join(dir, "treegrid") {
		t.Errorf("unexpected state dir %q", got)
	}
	if got := ConfigPath(); got != filepath.Join(dir, "treegrid", "config.yaml") {
		t.Errorf("expected yaml path by default, got %q", got)
	}
	if err := os.MkdirAll(filepath.Join(dir, "treegrid"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "treegrid", "config.toml"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := ConfigPath(); got != filepath.Join(dir, "treegrid", "config.toml") {
		t.Errorf("expected toml path when present, got %q", got)
	}
}
