package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ingesta-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ingesta/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ingesta", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// RevisionLedger returns a RevisionLedger interface backed by this store.
func (s *Store) RevisionLedger() driven.RevisionLedger {
	return &revisionLedger{store: s}
}

// SourceStore returns a SourceStore interface backed by this store.
func (s *Store) SourceStore() driven.SourceStore {
	return &sourceStore{store: s}
}

// DownloadCache returns a DownloadCache interface backed by this store.
func (s *Store) DownloadCache() driven.DownloadCache {
	return &downloadCache{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
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

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Revision Ledger ====================

// revisionLedger implements driven.RevisionLedger.
type revisionLedger struct {
	store *Store
}

var _ driven.RevisionLedger = (*revisionLedger)(nil)

// Lookup retrieves the live record for a source key.
func (s *revisionLedger) Lookup(ctx context.Context, sourceKey string) (*domain.RevisionRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT source_key, fingerprint, collection_id, document_ids, last_synced_at
		FROM revisions WHERE source_key = ?
	`, sourceKey)

	return scanRevision(row)
}

// ShouldSkip reports whether a record exists with exactly the given fingerprint.
func (s *revisionLedger) ShouldSkip(ctx context.Context, sourceKey, fingerprint string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM revisions WHERE source_key = ? AND fingerprint = ?
	`, sourceKey, fingerprint).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking revision: %w", err)
	}
	return count > 0, nil
}

// Replace writes the record for its source key, overwriting any prior record.
func (s *revisionLedger) Replace(ctx context.Context, record domain.RevisionRecord) error {
	if record.SourceKey == "" {
		return domain.ErrInvalidInput
	}

	docJSON, err := json.Marshal(record.DocumentIDs)
	if err != nil {
		return fmt.Errorf("marshalling document ids: %w", err)
	}

	if record.LastSyncedAt.IsZero() {
		record.LastSyncedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO revisions (source_key, fingerprint, collection_id, document_ids, last_synced_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_key) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			collection_id = excluded.collection_id,
			document_ids = excluded.document_ids,
			last_synced_at = excluded.last_synced_at
	`, record.SourceKey, record.Fingerprint, record.CollectionID,
		string(docJSON), formatTime(record.LastSyncedAt))

	if err != nil {
		return fmt.Errorf("saving revision: %w", err)
	}
	return nil
}

// Delete removes the record for a source key.
func (s *revisionLedger) Delete(ctx context.Context, sourceKey string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM revisions WHERE source_key = ?", sourceKey)
	if err != nil {
		return fmt.Errorf("deleting revision: %w", err)
	}
	return nil
}

// List returns all records for a collection, most recent first.
func (s *revisionLedger) List(ctx context.Context, collectionID string) ([]domain.RevisionRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_key, fingerprint, collection_id, document_ids, last_synced_at
		FROM revisions WHERE collection_id = ?
		ORDER BY last_synced_at DESC
	`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("querying revisions: %w", err)
	}
	defer rows.Close()

	var records []domain.RevisionRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		record, err := scanRevisionRows(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revisions: %w", err)
	}

	return records, nil
}

// DeleteByCollection removes every record for a collection.
func (s *revisionLedger) DeleteByCollection(ctx context.Context, collectionID string) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM revisions WHERE collection_id = ?", collectionID)
	if err != nil {
		return 0, fmt.Errorf("deleting revisions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted revisions: %w", err)
	}
	return int(n), nil
}

// Stats summarises ledger contents.
func (s *revisionLedger) Stats(ctx context.Context) (*domain.LedgerStats, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT collection_id, document_ids, last_synced_at FROM revisions
	`)
	if err != nil {
		return nil, fmt.Errorf("querying ledger stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.LedgerStats{ByCollection: make(map[string]int)}
	for rows.Next() {
		var collectionID, docJSON, syncedAt string
		if err := rows.Scan(&collectionID, &docJSON, &syncedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger stats: %w", err)
		}

		var ids []string
		if err := json.Unmarshal([]byte(docJSON), &ids); err != nil {
			return nil, fmt.Errorf("unmarshaling document ids: %w", err)
		}

		stats.Records++
		stats.Documents += len(ids)
		stats.ByCollection[collectionID]++
		if t := parseTime(syncedAt); t.After(stats.LastSyncedAt) {
			stats.LastSyncedAt = t
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger stats: %w", err)
	}

	return stats, nil
}

// ==================== Source Store ====================

// sourceStore implements driven.SourceStore.
type sourceStore struct {
	store *Store
}

var _ driven.SourceStore = (*sourceStore)(nil)

// Save stores or updates a source.
func (s *sourceStore) Save(ctx context.Context, source domain.Source) error {
	if source.ID == "" {
		return domain.ErrInvalidInput
	}

	settingsJSON, err := json.Marshal(source.Settings)
	if err != nil {
		return fmt.Errorf("marshalling settings: %w", err)
	}

	now := time.Now().UTC()
	if source.CreatedAt.IsZero() {
		source.CreatedAt = now
	}
	source.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, type, enabled, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			enabled = excluded.enabled,
			settings = excluded.settings,
			updated_at = excluded.updated_at
	`, source.ID, source.Name, string(source.Type), boolToInt(source.Enabled),
		string(settingsJSON), formatTime(source.CreatedAt), formatTime(source.UpdatedAt))

	if err != nil {
		return fmt.Errorf("saving source: %w", err)
	}
	return nil
}

// Get retrieves a source by ID.
func (s *sourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, type, enabled, settings, created_at, updated_at
		FROM sources WHERE id = ?
	`, id)

	return scanSource(row)
}

// GetByName retrieves a source by its unique name.
func (s *sourceStore) GetByName(ctx context.Context, name string) (*domain.Source, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, type, enabled, settings, created_at, updated_at
		FROM sources WHERE name = ?
	`, name)

	return scanSource(row)
}

// Delete removes a source.
func (s *sourceStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	return nil
}

// List returns all configured sources ordered by name.
func (s *sourceStore) List(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, type, enabled, settings, created_at, updated_at
		FROM sources
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source //nolint:prealloc // size unknown from query
	for rows.Next() {
		source, err := scanSourceRows(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sources: %w", err)
	}

	return sources, nil
}

// ==================== Download Cache ====================

// downloadCache implements driven.DownloadCache.
type downloadCache struct {
	store *Store
}

var _ driven.DownloadCache = (*downloadCache)(nil)

// Get returns the cache entry for a URL.
func (s *downloadCache) Get(ctx context.Context, url string) (*domain.CacheEntry, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT url, local_path, size_bytes, fetched_at
		FROM download_cache WHERE url = ?
	`, url)

	var entry domain.CacheEntry
	var fetchedAt string
	if err := row.Scan(&entry.URL, &entry.LocalPath, &entry.SizeBytes, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning cache entry: %w", err)
	}

	entry.FetchedAt = parseTime(fetchedAt)
	return &entry, nil
}

// Put stores or refreshes an entry.
func (s *downloadCache) Put(ctx context.Context, entry domain.CacheEntry) error {
	if entry.URL == "" {
		return domain.ErrInvalidInput
	}

	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO download_cache (url, local_path, size_bytes, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			local_path = excluded.local_path,
			size_bytes = excluded.size_bytes,
			fetched_at = excluded.fetched_at
	`, entry.URL, entry.LocalPath, entry.SizeBytes, formatTime(entry.FetchedAt))

	if err != nil {
		return fmt.Errorf("saving cache entry: %w", err)
	}
	return nil
}

// Sweep removes entries fetched before the cutoff.
func (s *downloadCache) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM download_cache WHERE fetched_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("sweeping cache: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting swept entries: %w", err)
	}
	return int(n), nil
}

// ==================== Helper Functions ====================

// scanRevision scans a single revision row.
func scanRevision(row *sql.Row) (*domain.RevisionRecord, error) {
	var record domain.RevisionRecord
	var docJSON, syncedAt string

	if err := row.Scan(&record.SourceKey, &record.Fingerprint, &record.CollectionID,
		&docJSON, &syncedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning revision: %w", err)
	}

	if err := json.Unmarshal([]byte(docJSON), &record.DocumentIDs); err != nil {
		return nil, fmt.Errorf("unmarshaling document ids: %w", err)
	}

	record.LastSyncedAt = parseTime(syncedAt)
	return &record, nil
}

// scanRevisionRows scans a revision from *sql.Rows.
func scanRevisionRows(rows *sql.Rows) (*domain.RevisionRecord, error) {
	var record domain.RevisionRecord
	var docJSON, syncedAt string

	if err := rows.Scan(&record.SourceKey, &record.Fingerprint, &record.CollectionID,
		&docJSON, &syncedAt); err != nil {
		return nil, fmt.Errorf("scanning revision: %w", err)
	}

	if err := json.Unmarshal([]byte(docJSON), &record.DocumentIDs); err != nil {
		return nil, fmt.Errorf("unmarshaling document ids: %w", err)
	}

	record.LastSyncedAt = parseTime(syncedAt)
	return &record, nil
}

// scanSource scans a single source row.
func scanSource(row *sql.Row) (*domain.Source, error) {
	var source domain.Source
	var sourceType, settingsJSON, createdAt, updatedAt string
	var enabled int

	if err := row.Scan(&source.ID, &source.Name, &sourceType, &enabled,
		&settingsJSON, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	if err := json.Unmarshal([]byte(settingsJSON), &source.Settings); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}

	source.Type = domain.SourceType(sourceType)
	source.Enabled = enabled == 1
	source.CreatedAt = parseTime(createdAt)
	source.UpdatedAt = parseTime(updatedAt)

	return &source, nil
}

// scanSourceRows scans a source from *sql.Rows.
func scanSourceRows(rows *sql.Rows) (*domain.Source, error) {
	var source domain.Source
	var sourceType, settingsJSON, createdAt, updatedAt string
	var enabled int

	if err := rows.Scan(&source.ID, &source.Name, &sourceType, &enabled,
		&settingsJSON, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scanning source: %w", err)
	}

	if err := json.Unmarshal([]byte(settingsJSON), &source.Settings); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}

	source.Type = domain.SourceType(sourceType)
	source.Enabled = enabled == 1
	source.CreatedAt = parseTime(createdAt)
	source.UpdatedAt = parseTime(updatedAt)

	return &source, nil
}
