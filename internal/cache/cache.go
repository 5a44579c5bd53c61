// Package cache persists finished single-entry builds between runs. A
// small in-memory LRU fronts the SQLite database so watch-mode rebuilds of
// unchanged entries never touch disk.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"
)

// hotEntries bounds the in-memory layer.
const hotEntries = 512

// FileName is the cache database file name.
const FileName = "duo-cache.db"

// Entry is one cached build outcome.
type Entry struct {
	Key        string
	EntryPath  string
	SourceHash string
	Type       string
	Code       string
	Map        []byte // marshalled source map, nil when maps were disabled
	CreatedAt  time.Time
}

// Store is a SQLite-backed build cache.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	hot *lru.Cache[string, *Entry]
}

// Open creates or opens a cache database. Use ":memory:" for an ephemeral
// cache; file paths get their parent directory created.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	hot, err := lru.New[string, *Entry](hotEntries)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create hot layer: %w", err)
	}

	store := &Store{db: db, hot: hot}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		key TEXT PRIMARY KEY,
		entry TEXT NOT NULL,
		source_hash TEXT NOT NULL,
		type TEXT NOT NULL,
		code TEXT NOT NULL,
		map BLOB,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_created_at ON builds(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get retrieves a cached build by key.
func (s *Store) Get(ctx context.Context, key string) (*Entry, bool, error) {
	if e, ok := s.hot.Get(key); ok {
		return e, true, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT key, entry, source_hash, type, code, map, created_at FROM builds WHERE key = ?",
		key,
	)

	var e Entry
	var createdUnix int64
	err := row.Scan(&e.Key, &e.EntryPath, &e.SourceHash, &e.Type, &e.Code, &e.Map, &createdUnix)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("scan build: %w", err)
	}
	e.CreatedAt = time.Unix(createdUnix, 0)

	s.hot.Add(key, &e)
	return &e, true, nil
}

// Put stores a build outcome, replacing any previous entry under the key.
func (s *Store) Put(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (key, entry, source_hash, type, code, map, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   entry = excluded.entry,
		   source_hash = excluded.source_hash,
		   type = excluded.type,
		   code = excluded.code,
		   map = excluded.map,
		   created_at = excluded.created_at`,
		e.Key, e.EntryPath, e.SourceHash, e.Type, e.Code, e.Map, e.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}

	s.hot.Add(e.Key, e)
	return nil
}

// Sweep deletes rows older than the given age and returns how many went.
func (s *Store) Sweep(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).Unix()
	res, err := s.db.ExecContext(ctx, "DELETE FROM builds WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep builds: %w", err)
	}

	// Stale hot entries age out on their own; the LRU stays consistent
	// because keys embed the source hash.
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// DefaultPath places the cache next to fetched components under the root.
func DefaultPath(root string) string {
	return filepath.Join(root, "components", FileName)
}

// HashSource fingerprints entry content.
func HashSource(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Key derives the cache key for one build variant. Every input that
// changes the output participates.
func Key(entryPath, sourceHash, typ string, development bool, plugins []string, global, standalone string) string {
	parts := []string{
		entryPath,
		sourceHash,
		typ,
		strconv.FormatBool(development),
		strings.Join(plugins, ","),
		global,
		standalone,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}
