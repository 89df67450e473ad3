// Package loader turns outline documents and SQLite adjacency tables into
// tree items and treetable Builders.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treegrid/pkg/debug"
	"github.com/vanderheijden86/treegrid/pkg/metrics"
)

// WorkspaceID is the ID of the root item created when several sources are
// loaded together.
const WorkspaceID = "workspace"

// DefaultMaxBufferSize is the default maximum JSONL line size (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported outline format")

// ParseOptions configures ParseJSONL.
type ParseOptions struct {
	// WarningHandler is called with warning messages (e.g., malformed JSON).
	// If nil, warnings go to the debug log.
	WarningHandler func(string)

	// BufferSize sets the maximum line size (in bytes) to read at once.
	// Lines longer than this are skipped with a warning.
	// If 0, uses DefaultMaxBufferSize.
	BufferSize int
}

// LoadFile reads an outline file and returns its root item. The format is
// chosen by extension: .json, .yaml/.yml (nested documents) or .jsonl (flat
// records with parent references). A document holding a list of items is
// wrapped under a root named after the file.
func LoadFile(path string) (*Item, error) {
	defer metrics.Timer(metrics.SourceLoad)()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading outline %s", path)
	}
	data = stripBOM(data)

	var root *Item
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		root, err = decodeDocument(data, path, json.Unmarshal)
	case ".yaml", ".yml":
		root, err = decodeDocument(data, path, yaml.Unmarshal)
	case ".jsonl":
		var items []*Item
		items, err = ParseJSONL(bytes.NewReader(data), ParseOptions{})
		if err == nil {
			root = wrap(path, BuildHierarchy(items))
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing outline %s", path)
	}
	normalize(root)
	debug.Log("loaded %s: %d items", path, root.Count())
	return root, nil
}

func decodeDocument(data []byte, path string, unmarshal func([]byte, any) error) (*Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return wrap(path, nil), nil
	}
	var items []*Item
	if err := unmarshal(trimmed, &items); err == nil {
		return wrap(path, items), nil
	}
	var item Item
	if err := unmarshal(trimmed, &item); err != nil {
		return nil, err
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return &item, nil
}

func wrap(path string, items []*Item) *Item {
	name := filepath.Base(path)
	return &Item{ID: name, Label: name, Kind: "file", Children: items}
}

// ParseJSONL parses one item per line. Malformed and invalid lines are
// skipped with a warning; only read errors fail the parse.
func ParseJSONL(r io.Reader, opts ParseOptions) ([]*Item, error) {
	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}
	reader := bufio.NewReaderSize(r, maxCapacity)

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) { debug.Log("warning: %s", msg) }
	}

	var items []*Item
	seen := make(map[string]bool)
	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "reading items stream at line %d", lineNum)
		}

		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err == io.EOF {
					break
				}
				if err != nil {
					return nil, errors.Wrapf(err, "skipping long line at line %d", lineNum)
				}
			}
			continue
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if lineNum == 1 {
			line = stripBOM(line)
		}

		var item Item
		if err := json.Unmarshal(line, &item); err != nil {
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}
		if err := item.Validate(); err != nil {
			warn(fmt.Sprintf("skipping invalid item on line %d: %v", lineNum, err))
			continue
		}
		if seen[item.ID] {
			warn(fmt.Sprintf("skipping duplicate id %q on line %d", item.ID, lineNum))
			continue
		}
		seen[item.ID] = true
		item.Status = normalizeStatus(item.Status)
		items = append(items, &item)
	}
	return items, nil
}

// LoadAll loads every path in parallel. A single path yields its own root;
// several are merged, in argument order, under a workspace root.
func LoadAll(ctx context.Context, paths []string) (*Item, error) {
	if len(paths) == 0 {
		return nil, errors.New("no outline files given")
	}
	roots := make([]*Item, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			root, err := LoadFile(p)
			if err != nil {
				return err
			}
			roots[i] = root
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(roots) == 1 {
		return roots[0], nil
	}
	return &Item{ID: WorkspaceID, Label: WorkspaceID, Kind: "workspace", Children: roots}, nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
