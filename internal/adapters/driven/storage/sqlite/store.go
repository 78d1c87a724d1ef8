package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/outremer-kg/recon-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/outremer-kg/recon-cli/internal/core/domain"
	"github.com/outremer-kg/recon-cli/internal/core/ports/driven"
	"github.com/outremer-kg/recon-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DecisionStore = (*Store)(nil)

// Store is the SQLite-backed decision store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.outremer/data/decisions.db.
// A database that cannot be opened or migrated is moved aside and
// recreated fresh rather than blocking the reviewer.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".outremer", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "decisions.db")

	db, err := openAndMigrate(dbPath)
	if err != nil {
		logger.Warn("Decision database unusable, moving aside: %v", err)
		if moveErr := quarantine(dbPath); moveErr != nil {
			return nil, fmt.Errorf("quarantining database: %w", moveErr)
		}
		db, err = openAndMigrate(dbPath)
		if err != nil {
			return nil, fmt.Errorf("recreating database: %w", err)
		}
	}

	return &Store{db: db, path: dbPath}, nil
}

// openAndMigrate opens the database in WAL mode and brings the schema up
// to date.
func openAndMigrate(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// quarantine moves a damaged database file (and its WAL sidecars) out of
// the way so a fresh one can be created under the original name.
func quarantine(dbPath string) error {
	if err := os.Rename(dbPath, dbPath+".corrupt"); err != nil && !os.IsNotExist(err) {
		return err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func migrate(db *sql.DB, fsys embed.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Decisions ====================

// SaveDecision stores or overwrites the decision for its triple.
func (s *Store) SaveDecision(ctx context.Context, d domain.Decision) error {
	if d.DocID == "" || d.Person == "" || d.RecordKey == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (doc_id, person, record_key, kind, comment, client_id, reviewer_name, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doc_id, person, record_key) DO UPDATE SET
			kind = excluded.kind,
			comment = excluded.comment,
			client_id = excluded.client_id,
			reviewer_name = excluded.reviewer_name,
			decided_at = excluded.decided_at
	`, d.DocID, d.Person, d.RecordKey, string(d.Kind),
		nullString(d.Comment), d.Reviewer.ClientID, nullString(d.Reviewer.Name), d.DecidedAt)

	if err != nil {
		return fmt.Errorf("saving decision: %w", err)
	}
	return nil
}

// GetDecision retrieves the live decision for a triple.
func (s *Store) GetDecision(ctx context.Context, key domain.DecisionKey) (*domain.Decision, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT doc_id, person, record_key, kind, comment, client_id, reviewer_name, decided_at
		FROM decisions WHERE doc_id = ? AND person = ? AND record_key = ?
	`, key.DocID, key.Person, key.RecordKey)

	d, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// DeleteDecision removes the decision for a triple. Deleting an absent
// decision succeeds.
func (s *Store) DeleteDecision(ctx context.Context, key domain.DecisionKey) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM decisions WHERE doc_id = ? AND person = ? AND record_key = ?",
		key.DocID, key.Person, key.RecordKey)
	if err != nil {
		return fmt.Errorf("deleting decision: %w", err)
	}
	return nil
}

// ListDecisions returns all live decisions for a document, ordered by
// mention and candidate for stable output.
func (s *Store) ListDecisions(ctx context.Context, docID string) ([]domain.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, person, record_key, kind, comment, client_id, reviewer_name, decided_at
		FROM decisions WHERE doc_id = ?
		ORDER BY person, record_key
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying decisions: %w", err)
	}
	defer rows.Close()

	var decisions []domain.Decision //nolint:prealloc // size unknown from query
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating decisions: %w", err)
	}

	return decisions, nil
}

// ==================== Entity Flags ====================

// SaveFlag sets an entity flag on a mention. Setting a set flag is a no-op
// overwrite.
func (s *Store) SaveFlag(ctx context.Context, f domain.EntityFlag) error {
	if f.DocID == "" || f.Person == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entity_flags (doc_id, person, kind, flagged_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(doc_id, person, kind) DO UPDATE SET
			flagged_at = excluded.flagged_at
	`, f.DocID, f.Person, string(f.Kind), f.FlaggedAt)

	if err != nil {
		return fmt.Errorf("saving flag: %w", err)
	}
	return nil
}

// HasFlag reports whether a flag kind is set on a mention.
func (s *Store) HasFlag(ctx context.Context, docID, person string, kind domain.EntityFlagKind) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entity_flags WHERE doc_id = ? AND person = ? AND kind = ?
	`, docID, person, string(kind)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking flag: %w", err)
	}
	return count > 0, nil
}

// DeleteFlag clears an entity flag. Clearing an unset flag succeeds.
func (s *Store) DeleteFlag(ctx context.Context, docID, person string, kind domain.EntityFlagKind) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM entity_flags WHERE doc_id = ? AND person = ? AND kind = ?",
		docID, person, string(kind))
	if err != nil {
		return fmt.Errorf("deleting flag: %w", err)
	}
	return nil
}

// ListFlags returns all set flags for a document.
func (s *Store) ListFlags(ctx context.Context, docID string) ([]domain.EntityFlag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doc_id, person, kind, flagged_at
		FROM entity_flags WHERE doc_id = ?
		ORDER BY person, kind
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying flags: %w", err)
	}
	defer rows.Close()

	var flags []domain.EntityFlag //nolint:prealloc // size unknown from query
	for rows.Next() {
		var f domain.EntityFlag
		var kind string
		if err := rows.Scan(&f.DocID, &f.Person, &kind, &f.FlaggedAt); err != nil {
			return nil, fmt.Errorf("scanning flag: %w", err)
		}
		f.Kind = domain.EntityFlagKind(kind)
		flags = append(flags, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating flags: %w", err)
	}

	return flags, nil
}

// ==================== Helper Functions ====================

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanDecision scans one decision row.
func scanDecision(row scanner) (*domain.Decision, error) {
	var d domain.Decision
	var kind string
	var comment, reviewerName sql.NullString
	var decidedAt sql.NullTime

	if err := row.Scan(&d.DocID, &d.Person, &d.RecordKey, &kind,
		&comment, &d.Reviewer.ClientID, &reviewerName, &decidedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning decision: %w", err)
	}

	d.Kind = domain.DecisionKind(kind)
	d.Comment = comment.String
	d.Reviewer.Name = reviewerName.String
	if decidedAt.Valid {
		d.DecidedAt = decidedAt.Time
	}

	return &d, nil
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
