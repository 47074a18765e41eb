package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/provenance-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/provenance-cli/internal/core/domain"
	"github.com/custodia-labs/provenance-cli/internal/core/ports/driven"
	"github.com/custodia-labs/provenance-cli/internal/textproc"
)

// DefaultFileName is the corpus database file name inside the data directory.
const DefaultFileName = "corpus.db"

// Ensure Store implements the interface.
var _ driven.CorpusStore = (*Store)(nil)

// Store is a SQLite-backed corpus.
type Store struct {
	db   *sql.DB
	path string

	// writeMu serialises appends.
	writeMu sync.Mutex

	now func() time.Time
}

// NewStore opens (or creates) the corpus database at path.
// If path is empty, defaults to ~/.provenance/data/corpus.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".provenance", "data", DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL gives readers a stable snapshot while a writer appends.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
		now:  func() time.Time { return time.Now().UTC() },
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every pending "NNN_name.up.sql" migration in order and
// records its version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Append stores doc in a single transaction. It assigns the document ID
// (when empty) and the creation time.
func (s *Store) Append(ctx context.Context, doc *domain.StoredDocument) (domain.DocumentRef, error) {
	if doc.ContentHash == "" {
		doc.ContentHash = textproc.Hash(doc.Text)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ref, err := s.append(ctx, doc)
	if err != nil {
		return domain.DocumentRef{}, &domain.StorageError{Op: "append", Err: err}
	}
	return ref, nil
}

func (s *Store) append(ctx context.Context, doc *domain.StoredDocument) (domain.DocumentRef, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DocumentRef{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	existing := domain.DocumentRef{ContentHash: doc.ContentHash, Duplicate: true}
	err = tx.QueryRowContext(ctx,
		"SELECT id, created_at FROM documents WHERE content_hash = ?", doc.ContentHash,
	).Scan(&existing.ID, &existing.CreatedAt)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return domain.DocumentRef{}, fmt.Errorf("checking duplicate: %w", err)
	}

	sentencesJSON, err := json.Marshal(nonNilStrings(doc.Sentences))
	if err != nil {
		return domain.DocumentRef{}, fmt.Errorf("marshalling sentences: %w", err)
	}
	featuresJSON, err := json.Marshal(nonNilFeatures(doc.Features))
	if err != nil {
		return domain.DocumentRef{}, fmt.Errorf("marshalling features: %w", err)
	}
	var vectorsJSON sql.NullString
	if doc.SentenceVectors != nil {
		b, err := json.Marshal(doc.SentenceVectors)
		if err != nil {
			return domain.DocumentRef{}, fmt.Errorf("marshalling sentence vectors: %w", err)
		}
		vectorsJSON = sql.NullString{String: string(b), Valid: true}
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = s.now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents
			(id, label, content_hash, text, sentences, features, sentence_vectors, word_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Label, doc.ContentHash, doc.Text, string(sentencesJSON), string(featuresJSON),
		vectorsJSON, doc.WordCount, doc.CreatedAt)
	if err != nil {
		return domain.DocumentRef{}, fmt.Errorf("inserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO terms (term) VALUES (?)")
	if err != nil {
		return domain.DocumentRef{}, fmt.Errorf("preparing terms: %w", err)
	}
	defer stmt.Close()
	for term := range doc.Features {
		if _, err := stmt.ExecContext(ctx, term); err != nil {
			return domain.DocumentRef{}, fmt.Errorf("inserting term: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.DocumentRef{}, fmt.Errorf("committing document: %w", err)
	}

	return domain.DocumentRef{
		ID:          doc.ID,
		ContentHash: doc.ContentHash,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

// All returns every document in insertion order from one read transaction.
func (s *Store) All(ctx context.Context) ([]domain.StoredDocument, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, &domain.StorageError{Op: "snapshot", Err: fmt.Errorf("beginning transaction: %w", err)}
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx, `
		SELECT id, label, content_hash, text, sentences, features, sentence_vectors, word_count, created_at
		FROM documents ORDER BY seq
	`)
	if err != nil {
		return nil, &domain.StorageError{Op: "snapshot", Err: fmt.Errorf("querying documents: %w", err)}
	}
	defer rows.Close()

	var docs []domain.StoredDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, &domain.StorageError{Op: "snapshot", Err: err}
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "snapshot", Err: fmt.Errorf("iterating documents: %w", err)}
	}
	return docs, nil
}

// Get retrieves a document by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, label, content_hash, text, sentences, features, sentence_vectors, word_count, created_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "get", Err: err}
	}
	return doc, nil
}

// List returns summaries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]domain.DocumentSummary, error) {
	query := `
		SELECT id, label, word_count, json_array_length(sentences), created_at
		FROM documents ORDER BY seq DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StorageError{Op: "list", Err: fmt.Errorf("querying documents: %w", err)}
	}
	defer rows.Close()

	var out []domain.DocumentSummary
	for rows.Next() {
		var d domain.DocumentSummary
		if err := rows.Scan(&d.ID, &d.Label, &d.WordCount, &d.SentenceCount, &d.CreatedAt); err != nil {
			return nil, &domain.StorageError{Op: "list", Err: fmt.Errorf("scanning document: %w", err)}
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list", Err: fmt.Errorf("iterating documents: %w", err)}
	}
	return out, nil
}

// Stats returns aggregate counters.
func (s *Store) Stats(ctx context.Context) (domain.CorpusStats, error) {
	var stats domain.CorpusStats

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(word_count), 0) FROM documents",
	).Scan(&stats.DocumentCount, &stats.TotalTerms)
	if err != nil {
		return stats, &domain.StorageError{Op: "stats", Err: fmt.Errorf("counting documents: %w", err)}
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM terms").Scan(&stats.DistinctTerms); err != nil {
		return stats, &domain.StorageError{Op: "stats", Err: fmt.Errorf("counting terms: %w", err)}
	}

	if stats.DocumentCount > 0 {
		err := s.db.QueryRowContext(ctx,
			"SELECT created_at FROM documents ORDER BY seq DESC LIMIT 1",
		).Scan(&stats.LastAddedAt)
		if err != nil {
			return stats, &domain.StorageError{Op: "stats", Err: fmt.Errorf("reading last document: %w", err)}
		}
	}

	return stats, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.StoredDocument, error) {
	var (
		doc                         domain.StoredDocument
		sentencesJSON, featuresJSON string
		vectorsJSON                 sql.NullString
	)
	if err := row.Scan(&doc.ID, &doc.Label, &doc.ContentHash, &doc.Text,
		&sentencesJSON, &featuresJSON, &vectorsJSON, &doc.WordCount, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if err := json.Unmarshal([]byte(sentencesJSON), &doc.Sentences); err != nil {
		return nil, fmt.Errorf("unmarshalling sentences: %w", err)
	}
	if err := json.Unmarshal([]byte(featuresJSON), &doc.Features); err != nil {
		return nil, fmt.Errorf("unmarshalling features: %w", err)
	}
	if vectorsJSON.Valid && vectorsJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(vectorsJSON.String), &doc.SentenceVectors); err != nil {
			return nil, fmt.Errorf("unmarshalling sentence vectors: %w", err)
		}
	}
	return &doc, nil
}

// jsonNull is the JSON representation of null.
const jsonNull = "null"

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilFeatures(v map[string]float64) map[string]float64 {
	if v == nil {
		return map[string]float64{}
	}
	return v
}
