package spacetraveling

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/spacetraveling/content"
)

// Store wraps a SQLite database holding published documents and draft
// revisions. It implements content.Client so the site can run without a
// remote content API.
type Store struct {
	db *sql.DB
}

var _ content.Client = (*Store)(nil)

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets page builds read while an import writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    type TEXT NOT NULL,
    uid TEXT NOT NULL,
    id TEXT NOT NULL,
    first_publication_date TEXT,
    data TEXT NOT NULL,
    PRIMARY KEY (type, uid)
);
CREATE TABLE IF NOT EXISTS revisions (
    ref TEXT NOT NULL,
    type TEXT NOT NULL,
    uid TEXT NOT NULL,
    data TEXT NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (ref, type, uid)
);
`)
	return err
}

// Query implements content.Client. Documents are ordered by publication
// date, newest first; documents without a date sort last.
func (s *Store) Query(ctx context.Context, docType string) ([]content.Document, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM documents WHERE type = ? ORDER BY first_publication_date IS NULL, first_publication_date DESC, uid`, docType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []content.Document
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		d, err := content.ParseDocument([]byte(data))
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// GetByUID implements content.Client. With a ref, the draft saved under that
// ref wins; documents the draft does not touch are served as published. A
// ref with no saved revision at all is unknown and reports ErrNotFound.
func (s *Store) GetByUID(ctx context.Context, docType, uid, ref string) (content.Document, error) {
	var data string
	if ref != "" {
		err := s.db.QueryRowContext(ctx, `SELECT data FROM revisions WHERE ref = ? AND type = ? AND uid = ?`, ref, docType, uid).Scan(&data)
		if err == nil {
			return content.ParseDocument([]byte(data))
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return content.Document{}, err
		}
		var known bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revisions WHERE ref = ?)`, ref).Scan(&known); err != nil {
			return content.Document{}, err
		}
		if !known {
			return content.Document{}, fmt.Errorf("ref %q: %w", ref, content.ErrNotFound)
		}
	}
	err := s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE type = ? AND uid = ?`, docType, uid).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Document{}, fmt.Errorf("%s %q: %w", docType, uid, content.ErrNotFound)
	}
	if err != nil {
		return content.Document{}, err
	}
	return content.ParseDocument([]byte(data))
}

// SaveDocument upserts a published document.
func (s *Store) SaveDocument(ctx context.Context, d content.Document) error {
	return saveDocument(ctx, s.db, d)
}

// SaveRevision stores a draft of d visible under ref.
func (s *Store) SaveRevision(ctx context.Context, ref string, d content.Document) error {
	return saveRevision(ctx, s.db, ref, d)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func saveDocument(ctx context.Context, ex execer, d content.Document) error {
	if d.Type == "" {
		d.Type = content.TypePost
	}
	data, err := content.MarshalDocument(d)
	if err != nil {
		return err
	}
	var published interface{}
	if d.FirstPublicationDate != nil {
		published = d.FirstPublicationDate.UTC().Format(time.RFC3339)
	}
	_, err = ex.ExecContext(ctx, `INSERT OR REPLACE INTO documents (type, uid, id, first_publication_date, data) VALUES (?, ?, ?, ?, ?)`,
		d.Type, d.UID, d.ID, published, string(data))
	return err
}

func saveRevision(ctx context.Context, ex execer, ref string, d content.Document) error {
	if ref == "" {
		return errors.New("spacetraveling: revision ref is required")
	}
	if d.Type == "" {
		d.Type = content.TypePost
	}
	data, err := content.MarshalDocument(d)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, `INSERT OR REPLACE INTO revisions (ref, type, uid, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		ref, d.Type, d.UID, string(data), time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeleteDocument removes a published document and its drafts.
func (s *Store) DeleteDocument(ctx context.Context, docType, uid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE type = ? AND uid = ?`, docType, uid); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM revisions WHERE type = ? AND uid = ?`, docType, uid)
	return err
}

// importFile is the JSON layout accepted by Import.
type importFile struct {
	Documents []json.RawMessage `json:"documents"`
	Revisions []struct {
		Ref      string          `json:"ref"`
		Document json.RawMessage `json:"document"`
	} `json:"revisions"`
}

// ImportResult counts what Import wrote.
type ImportResult struct {
	Documents int
	Revisions int
}

// Import reads documents and revisions in the content API's JSON shape and
// saves them in one transaction.
func (s *Store) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var f importFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return ImportResult{}, fmt.Errorf("spacetraveling: decode import: %w", err)
	}

	docs := make([]content.Document, 0, len(f.Documents))
	for _, raw := range f.Documents {
		d, err := content.ParseDocument(raw)
		if err != nil {
			return ImportResult{}, err
		}
		docs = append(docs, d)
	}
	type revision struct {
		ref string
		doc content.Document
	}
	revs := make([]revision, 0, len(f.Revisions))
	for _, rv := range f.Revisions {
		d, err := content.ParseDocument(rv.Document)
		if err != nil {
			return ImportResult{}, err
		}
		if rv.Ref == "" {
			return ImportResult{}, fmt.Errorf("spacetraveling: revision of %q has no ref", d.UID)
		}
		revs = append(revs, revision{ref: rv.Ref, doc: d})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, err
	}
	for _, d := range docs {
		if err := saveDocument(ctx, tx, d); err != nil {
			tx.Rollback()
			return ImportResult{}, err
		}
	}
	for _, rv := range revs {
		if err := saveRevision(ctx, tx, rv.ref, rv.doc); err != nil {
			tx.Rollback()
			return ImportResult{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return ImportResult{}, err
	}
	return ImportResult{Documents: len(docs), Revisions: len(revs)}, nil
}
