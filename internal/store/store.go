package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tarachom/accountingstore/internal/backend"
	"github.com/tarachom/accountingstore/internal/metadata"
	"github.com/tarachom/accountingstore/internal/present"
	"github.com/tarachom/accountingstore/internal/querysql"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Catalog table accstore_tables
const currentSchemaVersion = 1

const maxOpenConns = 4

// Store is the SQLite backend.
//
// Thread-safety: safe for concurrent use. The transaction registry and
// the writer slot are guarded by a mutex; statements are serialized by
// SQLite locking.
type Store struct {
	db        *sql.DB
	meta      *metadata.Configuration
	compiler  *querysql.Compiler
	logger    *slog.Logger
	resolver  present.Resolver
	cache     *present.Cache
	cacheSize int

	mu     sync.Mutex
	txs    map[backend.TxID]*sql.Tx
	writer backend.TxID
	nextTx atomic.Uint64
}

var _ backend.Backend = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for statement tracing. Default slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithResolver replaces the presentation resolver used to fill join maps.
// By default the store resolves references itself through an LRU cache.
func WithResolver(r present.Resolver) Option {
	return func(s *Store) {
		s.resolver = r
	}
}

// WithCacheSize sets the size of the default presentation cache.
func WithCacheSize(n int) Option {
	return func(s *Store) {
		s.cacheSize = n
	}
}

// Open creates or opens the database at path and creates every table the
// configuration declares.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, meta *metadata.Configuration, opts ...Option) (*Store, error) {
	if meta == nil {
		return nil, errors.New("open store: metadata configuration is required")
	}

	s := &Store{
		meta:     meta,
		compiler: querysql.NewCompiler(),
		logger:   slog.Default(),
		txs:      make(map[backend.TxID]*sql.Tx),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		cache, err := present.NewCache(s, s.cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = cache
		s.resolver = cache
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	s.db = db

	ctx := context.Background()
	if err := s.applySchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := s.syncTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// dsn applies the pragmas through connection parameters so every pooled
// connection gets them.
func dsn(path string) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode()
}

// Close rolls back open transactions and closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.mu.Lock()
	for id, tx := range s.txs {
		_ = tx.Rollback()
		delete(s.txs, id)
	}
	s.writer = backend.NoTx
	s.mu.Unlock()
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Meta returns the configuration the store was opened with.
func (s *Store) Meta() *metadata.Configuration {
	return s.meta
}

// applySchema creates the catalog and checks the schema version.
func (s *Store) applySchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// table looks up a declared table, optionally restricted to some kinds.
func (s *Store) table(name string, kinds ...metadata.TableKind) (metadata.TableDef, error) {
	def, ok := s.meta.Table(name)
	if !ok {
		return def, fmt.Errorf("%w: %s", backend.ErrUnknownTable, name)
	}
	if len(kinds) > 0 && !slices.Contains(kinds, def.Kind) {
		return def, fmt.Errorf("%w: %s is a %s table", backend.ErrUnknownTable, name, def.Kind)
	}
	return def, nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
