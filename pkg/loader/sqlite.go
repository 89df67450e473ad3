package loader

import (
	"database/sql"
	"os"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vanderheijden86/treegrid/pkg/debug"
	"github.com/vanderheijden86/treegrid/pkg/metrics"
	"github.com/vanderheijden86/treegrid/pkg/treetable"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS items (
	id        TEXT PRIMARY KEY,
	parent_id TEXT,
	position  INTEGER NOT NULL DEFAULT 0,
	label     TEXT NOT NULL,
	kind      TEXT,
	status    TEXT,
	priority  INTEGER,
	grp       INTEGER NOT NULL DEFAULT 0,
	created   TEXT
);
CREATE INDEX IF NOT EXISTS idx_items_parent ON items(parent_id, position);
`

const childrenSQL = `
SELECT id, label, kind, status, priority, grp, created
FROM items
WHERE COALESCE(parent_id, '') = ?
ORDER BY position, id`

// CreateSchema creates the items table and its parent index.
func CreateSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return errors.Wrap(err, "create items table")
	}
	return nil
}

// SQLiteBuilder reads children lazily from an items adjacency table, one
// query per expanded node. Top-level items have a NULL parent_id and hang
// below the root item returned by Root.
type SQLiteBuilder struct {
	db   *sql.DB
	path string
	stmt *sql.Stmt
	err  error
}

// OpenSQLite opens an items database written by ExportSQLite.
func OpenSQLite(path string) (*SQLiteBuilder, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "open database %s", path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", path)
	}
	stmt, err := db.Prepare(childrenSQL)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "prepare children query on %s", path)
	}
	return &SQLiteBuilder{db: db, path: path, stmt: stmt}, nil
}

// Root returns the item standing for the whole table.
func (b *SQLiteBuilder) Root() *Item {
	return &Item{Label: b.path, Kind: "database"}
}

// CreateChildList queries the children of the node's item. Query errors
// leave the node childless and are kept for Err.
func (b *SQLiteBuilder) CreateChildList(parent *treetable.Node) []any {
	defer metrics.Timer(metrics.SourceLoad)()

	it := ItemOf(parent)
	if it == nil {
		return nil
	}
	items, err := b.children(it.ID)
	if err != nil {
		debug.Log("sqlite children of %q: %v", it.ID, err)
		if b.err == nil {
			b.err = err
		}
		return nil
	}
	out := make([]any, len(items))
	for i, c := range items {
		out[i] = c
	}
	return out
}

func (b *SQLiteBuilder) children(parentID string) ([]*Item, error) {
	rows, err := b.stmt.Query(parentID)
	if err != nil {
		return nil, errors.Wrapf(err, "query children of %q", parentID)
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		var (
			it       Item
			kind     sql.NullString
			status   sql.NullString
			priority sql.NullInt64
			created  sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.Label, &kind, &status, &priority, &it.Group, &created); err != nil {
			return nil, errors.Wrapf(err, "scan child of %q", parentID)
		}
		it.Parent = parentID
		it.Kind = kind.String
		it.Status = status.String
		it.Priority = int(priority.Int64)
		if created.Valid && created.String != "" {
			if t, err := time.Parse(time.RFC3339, created.String); err == nil {
				it.Created = t
			}
		}
		out = append(out, &it)
	}
	return out, errors.Wrapf(rows.Err(), "iterate children of %q", parentID)
}

// IsFinite reports true: the table holds a bounded set of rows.
func (b *SQLiteBuilder) IsFinite() bool { return true }

// Err returns the first query error seen while building children.
func (b *SQLiteBuilder) Err() error { return b.err }

// Close releases the database.
func (b *SQLiteBuilder) Close() error {
	if b.stmt != nil {
		b.stmt.Close()
	}
	return b.db.Close()
}

// ExportSQLite writes the descendants of root to a fresh items database.
// Children of root become top-level rows; sibling order is kept in the
// position column.
func ExportSQLite(root *Item, path string) (int, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return 0, errors.Wrap(err, "remove existing database")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, errors.Wrap(err, "open database")
	}
	defer db.Close()

	if err := CreateSchema(db); err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO items (id, parent_id, position, label, kind, status, priority, grp, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	count := 0
	var insert func(parent *Item, parentID any) error
	insert = func(parent *Item, parentID any) error {
		for pos, c := range parent.Children {
			var created any
			if !c.Created.IsZero() {
				created = c.Created.UTC().Format(time.RFC3339)
			}
			grp := 0
			if c.Group {
				grp = 1
			}
			if _, err := stmt.Exec(c.ID, parentID, pos, c.Label, c.Kind, c.Status, c.Priority, grp, created); err != nil {
				return errors.Wrapf(err, "insert item %s", c.ID)
			}
			count++
			if err := insert(c, c.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(root, nil); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit")
	}
	return count, nil
}
