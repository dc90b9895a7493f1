// Package store keeps revisions of snapshot documents in a SQLite
// database, one revision list per project.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/gatetree/api"
	"github.com/agentic-research/gatetree/internal/snapshot"
)

// ErrNotFound is returned when no revision matches.
var ErrNotFound = errors.New("revision not found")

// Revision describes one saved document.
type Revision struct {
	ID      int64     `json:"id"`
	Project string    `json:"project"`
	Created time.Time `json:"created"`
	// Version is the simulator version the tree was built for.
	Version string `json:"version"`
	Note    string `json:"note,omitempty"`
}

// Store is a revision database. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS revisions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project TEXT NOT NULL,
	created INTEGER NOT NULL,
	version TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	document BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS revisions_project ON revisions(project, id);
CREATE TABLE IF NOT EXISTS label_refs (
	label TEXT PRIMARY KEY,
	bitmap BLOB
);
`

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores doc as the newest revision of project.
func (s *Store) Save(ctx context.Context, project, version, note string, doc *api.Document) (Revision, error) {
	data, err := snapshot.Encode(doc)
	if err != nil {
		return Revision{}, err
	}
	rev := Revision{Project: project, Created: time.Now().UTC(), Version: version, Note: note}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO revisions (project, created, version, note, document) VALUES (?, ?, ?, ?, ?)",
		project, rev.Created.UnixNano(), version, note, data)
	if err != nil {
		return Revision{}, fmt.Errorf("insert revision: %w", err)
	}
	if rev.ID, err = res.LastInsertId(); err != nil {
		return Revision{}, err
	}
	if err := indexLabels(ctx, tx, uint32(rev.ID), doc); err != nil {
		return Revision{}, err
	}
	return rev, tx.Commit()
}

// indexLabels adds id to the bitmap of every parameter label in doc.
func indexLabels(ctx context.Context, tx *sql.Tx, id uint32, doc *api.Document) error {
	labels := map[string]struct{}{}
	var walk func(n *api.NodeSnapshot)
	walk = func(n *api.NodeSnapshot) {
		for _, p := range n.Parameters {
			labels[p.Label] = struct{}{}
		}
		for i := range n.Children {
			walk(&n.Children[i])
		}
	}
	walk(&doc.Root)

	for label := range labels {
		rb := roaring.New()
		var blob []byte
		err := tx.QueryRowContext(ctx, "SELECT bitmap FROM label_refs WHERE label = ?", label).Scan(&blob)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read label %q: %w", label, err)
		}
		if len(blob) > 0 {
			if err := rb.UnmarshalBinary(blob); err != nil {
				return fmt.Errorf("unmarshal bitmap: %w", err)
			}
		}
		rb.Add(id)
		var buf bytes.Buffer
		if _, err := rb.WriteTo(&buf); err != nil {
			return fmt.Errorf("marshal bitmap: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO label_refs (label, bitmap) VALUES (?, ?)", label, buf.Bytes()); err != nil {
			return fmt.Errorf("write label %q: %w", label, err)
		}
	}
	return nil
}

const revisionColumns = "id, project, created, version, note"

func scanRevision(sc interface{ Scan(...any) error }, extra ...any) (Revision, error) {
	var (
		r       Revision
		created int64
	)
	dest := append([]any{&r.ID, &r.Project, &created, &r.Version, &r.Note}, extra...)
	if err := sc.Scan(dest...); err != nil {
		return Revision{}, err
	}
	r.Created = time.Unix(0, created).UTC()
	return r, nil
}

func (s *Store) one(ctx context.Context, query string, args ...any) (Revision, *api.Document, error) {
	var data []byte
	rev, err := scanRevision(s.db.QueryRowContext(ctx, query, args...), &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, nil, ErrNotFound
	}
	if err != nil {
		return Revision{}, nil, err
	}
	doc, err := snapshot.Decode(data)
	if err != nil {
		return Revision{}, nil, fmt.Errorf("revision %d: %w", rev.ID, err)
	}
	return rev, doc, nil
}

// Latest returns the newest revision of project.
func (s *Store) Latest(ctx context.Context, project string) (Revision, *api.Document, error) {
	return s.one(ctx,
		"SELECT "+revisionColumns+", document FROM revisions WHERE project = ? ORDER BY id DESC LIMIT 1", project)
}

// Get returns the revision with the given id.
func (s *Store) Get(ctx context.Context, id int64) (Revision, *api.Document, error) {
	return s.one(ctx, "SELECT "+revisionColumns+", document FROM revisions WHERE id = ?", id)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// List returns the revisions of project, newest first.
func (s *Store) List(ctx context.Context, project string) ([]Revision, error) {
	return s.list(ctx, "SELECT "+revisionColumns+" FROM revisions WHERE project = ? ORDER BY id DESC", project)
}

// Projects returns the names of all projects with at least one revision.
func (s *Store) Projects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT project FROM revisions ORDER BY project")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// FindLabel returns the revisions containing a parameter labelled label,
// oldest first.
func (s *Store) FindLabel(ctx context.Context, label string) ([]Revision, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT bitmap FROM label_refs WHERE label = ?", label).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rb := roaring.New()
	if err := rb.UnmarshalBinary(blob); err != nil {
		return nil, fmt.Errorf("unmarshal bitmap: %w", err)
	}
	if rb.IsEmpty() {
		return nil, nil
	}

	ids := rb.ToArray()
	args := make([]any, len(ids))
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		args[i] = int64(id)
		placeholders[i] = "?"
	}
	query := fmt.Sprintf("SELECT %s FROM revisions WHERE id IN (%s) ORDER BY id",
		revisionColumns, strings.Join(placeholders, ","))
	return s.list(ctx, query, args...)
}
