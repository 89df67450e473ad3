package datasource

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/vanderheijden86/treegrid/pkg/loader"
	"github.com/vanderheijden86/treegrid/pkg/treetable"
)

// ErrMixedSources is returned when a database is combined with other sources.
var ErrMixedSources = errors.New("a database source cannot be combined with other sources")

// Tree is an opened set of sources: a root item and the Builder that serves
// the children below it.
type Tree struct {
	Root    *loader.Item
	Builder treetable.Builder
	// Reloadable is true when the sources can be re-read with
	// loader.LoadAll, which is the case for outline files.
	Reloadable bool

	db *loader.SQLiteBuilder
}

// Close releases the database, if any.
func (t *Tree) Close() error {
	if t.db != nil {
		return t.db.Close()
	}
	return nil
}

// Err reports the first database query error, if any.
func (t *Tree) Err() error {
	if t.db != nil {
		return t.db.Err()
	}
	return nil
}

// Open loads outline files eagerly, or opens a single database whose items
// are queried lazily as nodes are expanded.
func Open(ctx context.Context, sources []DataSource) (*Tree, error) {
	if len(sources) == 0 {
		return nil, errors.New("no sources")
	}
	for _, s := range sources {
		if s.Type == SourceTypeSQLite {
			if len(sources) > 1 {
				return nil, errors.WithStack(ErrMixedSources)
			}
			db, err := loader.OpenSQLite(s.Path)
			if err != nil {
				return nil, err
			}
			return &Tree{Root: db.Root(), Builder: db, db: db}, nil
		}
	}

	root, err := loader.LoadAll(ctx, Paths(sources))
	if err != nil {
		return nil, err
	}
	return &Tree{Root: root, Builder: loader.ItemBuilder{}, Reloadable: true}, nil
}
