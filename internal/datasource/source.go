// Package datasource resolves command-line source arguments into outline
// files and databases and opens them as a tree for projection.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vanderheijden86/treegrid/pkg/config"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeOutline is a JSON, YAML or JSONL outline file
	SourceTypeOutline SourceType = "outline"
	// SourceTypeSQLite is an items database written by the export command
	SourceTypeSQLite SourceType = "sqlite"
)

var (
	// ErrUnknownSource is returned for an argument that is neither a file,
	// a directory, a configured source name nor a favorite number.
	ErrUnknownSource = errors.New("unknown source")
	// ErrUnsupportedType is returned for files with an unrecognized extension.
	ErrUnsupportedType = errors.New("unsupported source type")
)

// DataSource represents one resolved source
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// Name is the configured source name, if the source was named
	Name string `json:"name,omitempty"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	name := s.Path
	if s.Name != "" {
		name = fmt.Sprintf("%s (%s)", s.Name, s.Path)
	}
	return fmt.Sprintf("%s [%s, %d bytes, mod=%s]", name, s.Type, s.Size, s.ModTime.Format(time.RFC3339))
}

// TypeOf classifies a path by its extension.
func TypeOf(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml", ".jsonl":
		return SourceTypeOutline, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedType, "%s", path)
	}
}

// Resolve turns arguments into sources. An argument is tried, in order, as
// an existing file, a directory to discover outlines in, a configured
// source name and a favorite number (1-9).
func Resolve(args []string, cfg config.Config) ([]DataSource, error) {
	var sources []DataSource
	for _, arg := range args {
		found, err := resolveOne(arg, cfg)
		if err != nil {
			return nil, err
		}
		sources = append(sources, found...)
	}
	return sources, nil
}

func resolveOne(arg string, cfg config.Config) ([]DataSource, error) {
	if info, err := os.Stat(arg); err == nil {
		if info.IsDir() {
			return Discover(arg)
		}
		s, err := newSource(arg, info)
		if err != nil {
			return nil, err
		}
		return []DataSource{s}, nil
	}

	src := cfg.FindSource(arg)
	if src == nil {
		if n, err := strconv.Atoi(arg); err == nil {
			src = cfg.FavoriteSource(n)
		}
	}
	if src == nil {
		return nil, errors.Wrapf(ErrUnknownSource, "%q", arg)
	}
	info, err := os.Stat(src.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "source %s", src.Name)
	}
	s, err := newSource(src.Path, info)
	if err != nil {
		return nil, err
	}
	s.Name = src.Name
	return []DataSource{s}, nil
}

func newSource(path string, info os.FileInfo) (DataSource, error) {
	typ, err := TypeOf(path)
	if err != nil {
		return DataSource{}, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return DataSource{}, errors.Wrap(err, "resolving path")
	}
	return DataSource{
		Type:    typ,
		Path:    abs,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}, nil
}

// Discover finds outline files directly inside dir, sorted by name.
// Databases, backups and merge artifacts are skipped.
func Discover(dir string) ([]DataSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "reading source directory")
	}

	var sources []DataSource
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		// Skip backups and merge artifacts
		if strings.HasPrefix(name, ".") ||
			strings.Contains(name, ".backup") ||
			strings.Contains(name, ".orig") ||
			strings.Contains(name, ".merge") {
			continue
		}
		if typ, err := TypeOf(name); err != nil || typ != SourceTypeOutline {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}
		s, err := newSource(filepath.Join(dir, name), info)
		if err != nil {
			continue
		}
		sources = append(sources, s)
	}
	if len(sources) == 0 {
		return nil, errors.Newf("no outline files in %s", dir)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })
	return sources, nil
}

// Paths returns the paths of sources.
func Paths(sources []DataSource) []string {
	paths := make([]string, len(sources))
	for i, s := range sources {
		paths[i] = s.Path
	}
	return paths
}
