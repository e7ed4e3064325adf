// Package sqlite implements the annotation store on SQLite.
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/cognibio/biotag/pkg/biotag/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open opens a SQLite annotation database with WAL mode enabled, creating the
// schema on first use.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS docs (
	id TEXT PRIMARY KEY,
	uri TEXT UNIQUE,
	title TEXT,
	body TEXT,
	tagged_at TEXT
);

CREATE TABLE IF NOT EXISTS annotations (
	doc_id TEXT NOT NULL,
	start_off INTEGER NOT NULL,
	end_off INTEGER NOT NULL,
	surface TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	entity_label TEXT,
	entity_type TEXT,
	FOREIGN KEY(doc_id) REFERENCES docs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_annotations_doc ON annotations(doc_id);
CREATE INDEX IF NOT EXISTS idx_annotations_entity ON annotations(entity_id);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}

// SaveDoc stores a document and its annotations, replacing any previous
// version saved under the same URI.
func (s *sqliteStore) SaveDoc(ctx context.Context, d store.Doc) error {
	if d.ID == "" {
		d.ID = s.newID()
	}
	if d.TaggedAt.IsZero() {
		d.TaggedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if d.URI != "" {
		// Replace an earlier run over the same document.
		if _, err := tx.ExecContext(ctx, "DELETE FROM docs WHERE uri = ? AND id != ?", d.URI, d.ID); err != nil {
			return err
		}
	}

	// NULL rather than "" so documents without a URI do not collide on the
	// unique index.
	uri := sql.NullString{String: d.URI, Valid: d.URI != ""}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO docs (id, uri, title, body, tagged_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET uri=excluded.uri, title=excluded.title, body=excluded.body, tagged_at=excluded.tagged_at`,
		d.ID, uri, d.Title, d.Text, d.TaggedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM annotations WHERE doc_id = ?", d.ID); err != nil {
		return err
	}
	for _, a := range d.Annotations {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO annotations (doc_id, start_off, end_off, surface, entity_id, entity_label, entity_type)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			d.ID, a.Start, a.End, a.Surface, a.EntityID, a.EntityLabel, a.EntityType); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetDoc retrieves a document by ID
func (s *sqliteStore) GetDoc(ctx context.Context, id string) (store.Doc, bool, error) {
	return s.getDoc(ctx, "id = ?", id)
}

// GetDocByURI retrieves a document by URI
func (s *sqliteStore) GetDocByURI(ctx context.Context, uri string) (store.Doc, bool, error) {
	return s.getDoc(ctx, "uri = ?", uri)
}

func (s *sqliteStore) getDoc(ctx context.Context, where string, arg any) (store.Doc, bool, error) {
	var d store.Doc
	var uri sql.NullString
	var taggedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, uri, title, body, tagged_at FROM docs WHERE "+where, arg).
		Scan(&d.ID, &uri, &d.Title, &d.Text, &taggedAt)
	if err == sql.ErrNoRows {
		return store.Doc{}, false, nil
	}
	if err != nil {
		return store.Doc{}, false, err
	}
	d.URI = uri.String
	if t, err := time.Parse(time.RFC3339, taggedAt); err == nil {
		d.TaggedAt = t
	}

	anns, err := s.annotations(ctx, d.ID)
	if err != nil {
		return store.Doc{}, false, err
	}
	d.Annotations = anns
	return d, true, nil
}

func (s *sqliteStore) annotations(ctx context.Context, docID string) ([]store.Annotation, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT start_off, end_off, surface, entity_id, entity_label, entity_type
FROM annotations WHERE doc_id = ? ORDER BY start_off, end_off DESC`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var anns []store.Annotation
	for rows.Next() {
		var a store.Annotation
		if err := rows.Scan(&a.Start, &a.End, &a.Surface, &a.EntityID, &a.EntityLabel, &a.EntityType); err != nil {
			return nil, err
		}
		anns = append(anns, a)
	}
	return anns, rows.Err()
}

// DocsByEntity returns documents mentioning the given entity, most recently
// tagged first.
func (s *sqliteStore) DocsByEntity(ctx context.Context, entityID string, limit int) ([]store.Doc, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT DISTINCT d.id FROM docs d
JOIN annotations a ON a.doc_id = d.id
WHERE a.entity_id = ?
ORDER BY d.tagged_at DESC
LIMIT ?`, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	docs := make([]store.Doc, 0, len(ids))
	for _, id := range ids {
		d, ok, err := s.GetDoc(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// EntityCounts aggregates mention counts across the corpus, most mentioned
// first.
func (s *sqliteStore) EntityCounts(ctx context.Context, limit int) ([]store.EntityCount, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT entity_id, MAX(entity_label), MAX(entity_type), COUNT(DISTINCT doc_id), COUNT(*)
FROM annotations
GROUP BY entity_id
ORDER BY COUNT(*) DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []store.EntityCount
	for rows.Next() {
		var c store.EntityCount
		if err := rows.Scan(&c.EntityID, &c.EntityLabel, &c.EntityType, &c.Docs, &c.Mentions); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
