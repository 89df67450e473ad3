// Package config handles loading and saving treegrid configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/treegrid/config.yaml (or config.toml)
//   - State:   ~/.local/state/treegrid/ (persisted expand/collapse state)
//
// Environment variables prefixed with TREEGRID_ override file values.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Source is a registered outline file or database.
type Source struct {
	Name string `yaml:"name" toml:"name"`
	Path string `yaml:"path" toml:"path"`
}

// ViewConfig holds the initial projection policy of the grid.
type ViewConfig struct {
	RootVisible      bool   `yaml:"root_visible,omitempty" toml:"root_visible" env:"TREEGRID_ROOT_VISIBLE"`
	IncludeAncestors bool   `yaml:"include_ancestors,omitempty" toml:"include_ancestors" env:"TREEGRID_INCLUDE_ANCESTORS"`
	IncludeChildren  bool   `yaml:"include_children,omitempty" toml:"include_children" env:"TREEGRID_INCLUDE_CHILDREN"`
	SortField        string `yaml:"sort_field,omitempty" toml:"sort_field" env:"TREEGRID_SORT"`           // default, label, priority, created, status, kind, id
	SortDescending   bool   `yaml:"sort_descending,omitempty" toml:"sort_descending" env:"TREEGRID_SORT_DESC"`
	Filter           string `yaml:"filter,omitempty" toml:"filter" env:"TREEGRID_FILTER"`               // query expression, see pkg/query
	ExpandDepth      int    `yaml:"expand_depth,omitempty" toml:"expand_depth" env:"TREEGRID_EXPAND_DEPTH"` // levels expanded when no state is saved
}

// WatchConfig controls live reloading of file sources.
type WatchConfig struct {
	Enabled      bool `yaml:"enabled,omitempty" toml:"enabled" env:"TREEGRID_WATCH"`
	DebounceMs   int  `yaml:"debounce_ms,omitempty" toml:"debounce_ms" env:"TREEGRID_WATCH_DEBOUNCE_MS"`
	PollInterval int  `yaml:"poll_interval_ms,omitempty" toml:"poll_interval_ms" env:"TREEGRID_WATCH_POLL_MS"`
	ForcePoll    bool `yaml:"force_poll,omitempty" toml:"force_poll" env:"TREEGRID_WATCH_FORCE_POLL"`
}

// Config is the top-level configuration for treegrid.
type Config struct {
	Sources   []Source       `yaml:"sources,omitempty" toml:"sources"`
	Favorites map[int]string `yaml:"favorites,omitempty" toml:"-"` // Number key (1-9) -> source name
	View      ViewConfig     `yaml:"view,omitempty" toml:"view"`
	Watch     WatchConfig    `yaml:"watch,omitempty" toml:"watch"`
	StateDir  string         `yaml:"state_dir,omitempty" toml:"state_dir" env:"TREEGRID_STATE_DIR"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Favorites: make(map[int]string),
		View: ViewConfig{
			SortField:   "default",
			ExpandDepth: 1,
		},
		Watch: WatchConfig{
			Enabled:      true,
			DebounceMs:   200,
			PollInterval: 2000,
		},
	}
}

// ConfigDir returns the XDG config directory for treegrid.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "treegrid")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "treegrid")
}

// StateDir returns the XDG state directory for treegrid.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "treegrid")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "treegrid")
}

// ConfigPath returns the full path to the config file. A config.toml is
// preferred over config.yaml when both exist.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	if toml := filepath.Join(dir, "config.toml"); fileExists(toml) {
		return toml
	}
	return filepath.Join(dir, "config.yaml")
}

// ResolvedStateDir returns the configured state directory or the XDG default.
func (c Config) ResolvedStateDir() string {
	if c.StateDir != "" {
		return expandHome(c.StateDir)
	}
	return StateDir()
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		return cfg, applyEnv(&cfg)
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path, by extension YAML or TOML,
// then applies environment overrides.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, errors.Wrap(err, "reading config")
	case isTOML(path):
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(err, "parsing config")
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(err, "parsing config")
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	// Ensure favorites map is initialized
	if cfg.Favorites == nil {
		cfg.Favorites = make(map[int]string)
	}
	for i := range cfg.Sources {
		cfg.Sources[i].Path = expandHome(cfg.Sources[i].Path)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return errors.Wrap(err, "parsing environment")
	}
	return nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return errors.New("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path in the format implied by its
// extension.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	var data []byte
	if isTOML(path) {
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
			return errors.Wrap(err, "marshaling config")
		}
		data = []byte(b.String())
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return errors.Wrap(err, "marshaling config")
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "writing config")
	}
	return nil
}

// FindSource returns the source with the given name, or nil.
func (c Config) FindSource(name string) *Source {
	for i := range c.Sources {
		if strings.EqualFold(c.Sources[i].Name, name) {
			return &c.Sources[i]
		}
	}
	return nil
}

// FavoriteSource returns the source assigned to number key n (1-9), or nil.
func (c Config) FavoriteSource(n int) *Source {
	name, ok := c.Favorites[n]
	if !ok {
		return nil
	}
	return c.FindSource(name)
}

// SetFavorite assigns a source name to a number key (1-9).
func (c *Config) SetFavorite(n int, sourceName string) {
	if c.Favorites == nil {
		c.Favorites = make(map[int]string)
	}
	if sourceName == "" {
		delete(c.Favorites, n)
	} else {
		c.Favorites[n] = sourceName
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
