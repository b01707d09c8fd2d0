package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/webscour/internal/config"
	"github.com/nao1215/webscour/internal/model"
)

// DocumentStore is the SQLite-backed document store.
type DocumentStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures DocumentStore behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so readers do not block the writer.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the store in dataDir.
// With CreateIfNotExists false a missing database is ErrDatabaseNotFound.
func Open(dataDir string, opts Options) (*DocumentStore, error) {
	dbPath := filepath.Join(dataDir, config.DefaultDBFile)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dataDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a new file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &DocumentStore{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *DocumentStore) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *DocumentStore) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (s *DocumentStore) createTables() error {
	schema := `
	-- One row per normalized URL; re-fetching overwrites the row.
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		host TEXT NOT NULL,
		content BLOB NOT NULL,
		content_hash TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_host ON documents(host);

	-- Completion summaries of crawl runs
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id TEXT PRIMARY KEY,
		scope TEXT NOT NULL,
		pages_fetched INTEGER NOT NULL,
		max_pages INTEGER NOT NULL,
		unique_urls INTEGER NOT NULL,
		duplicates INTEGER NOT NULL,
		out_of_scope INTEGER NOT NULL,
		failures INTEGER NOT NULL,
		enqueued INTEGER NOT NULL,
		budget_reached INTEGER NOT NULL,
		workers INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		elapsed_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON crawl_runs(started_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// DocumentID returns the stable id of a normalized URL.
func DocumentID(normalizedURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(normalizedURL)).String()
}

// ContentHash returns the hex SHA3-256 of raw.
func ContentHash(raw []byte) string {
	sum := sha3.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Put stores raw under the id of rawURL, replacing any previous content.
// It is safe for concurrent use.
func (s *DocumentStore) Put(ctx context.Context, rawURL string, raw []byte) (string, error) {
	normalized, err := model.NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}

	if raw == nil {
		raw = []byte{}
	}

	id := DocumentID(normalized)

	query := `
	INSERT INTO documents (id, url, host, content, content_hash, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		content = excluded.content,
		content_hash = excluded.content_hash,
		fetched_at = excluded.fetched_at
	`

	_, err = s.db.ExecContext(ctx, query,
		id,
		normalized,
		model.Host(normalized),
		raw,
		ContentHash(raw),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}

	return id, nil
}

// Get retrieves a document by id, or ErrNotFound.
func (s *DocumentStore) Get(ctx context.Context, id string) (*model.Document, error) {
	query := `
	SELECT id, url, content, content_hash, fetched_at
	FROM documents
	WHERE id = ?
	`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// ListAll returns every stored document ordered by id.
func (s *DocumentStore) ListAll(ctx context.Context) ([]model.Document, error) {
	query := `
	SELECT id, url, content, content_hash, fetched_at
	FROM documents
	ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}

	return docs, rows.Err()
}

// Count returns the number of stored documents.
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// URLs maps each requested document id to its URL. Unknown ids are omitted.
func (s *DocumentStore) URLs(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string, len(ids))

	stmt, err := s.db.PrepareContext(ctx, "SELECT url FROM documents WHERE id = ?")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare url lookup: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		var u string
		err := stmt.QueryRowContext(ctx, id).Scan(&u)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up url: %w", err)
		}
		result[id] = u
	}

	return result, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var doc model.Document
	var fetchedAt string

	if err := row.Scan(&doc.ID, &doc.URL, &doc.Raw, &doc.ContentHash, &fetchedAt); err != nil {
		return nil, err
	}

	doc.FetchedAt = parseTimestamp(fetchedAt)
	return &doc, nil
}
