// Package store provides SQLite-backed persistence for the four logical
// stores (appdata, userdata, dictionaries, dpd): a bounded connection
// pool for reads plus a single write mutex per store, embedded schema
// migration, and FTS5 index maintenance.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	"github.com/sirupsen/logrus"
)

// minPoolSize is the minimum bounded read-connection pool size required
// by the concurrency model (§5): "a bounded connection pool (size ≥ 4)".
const minPoolSize = 4

// Handle is one logical store: a pooled `*sql.DB` (database/sql already
// bounds and reuses connections, so the pool is expressed via
// SetMaxOpenConns rather than a second hand-rolled pool on top of it) and
// a single write mutex serializing write(op) calls.
type Handle struct {
	Name    string
	db      *sql.DB
	writeMu sync.Mutex
	log     *logrus.Entry
}

// OpenHandle opens dsn with the given read pool size (clamped to
// minPoolSize) and logger, without running any schema.
func OpenHandle(name, dsn string, poolSize int, log *logrus.Logger) (*Handle, error) {
	if poolSize < minPoolSize {
		poolSize = minPoolSize
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store %s: open %s: %w", name, dsn, err)
	}
	db.SetMaxOpenConns(poolSize)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store %s: ping %s: %w", name, dsn, err)
	}
	return &Handle{Name: name, db: db, log: log.WithField("store", name)}, nil
}

// Read runs op with a pooled, read-intent connection. Multiple concurrent
// readers are permitted; SQLite's own locking is the final safety net.
func (h *Handle) Read(ctx context.Context, op func(*sql.DB) error) error {
	return op(h.db)
}

// Write serializes op against the store's single write mutex, exclusive
// for the duration of op.
func (h *Handle) Write(ctx context.Context, op func(*sql.DB) error) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return op(h.db)
}

// Conn hands the caller the underlying *sql.DB for multi-statement
// pipelines (migrations, bulk import transactions) that must themselves
// acquire the write mutex when writing.
func (h *Handle) Conn() *sql.DB { return h.db }

// WithWriteTx runs fn inside a transaction held under the write mutex.
// Chunked bulk imports use this per chunk; a returned error rolls back
// just that chunk's transaction.
func (h *Handle) WithWriteTx(ctx context.Context, fn func(*sql.Tx) error) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store %s: begin tx: %w", h.Name, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (h *Handle) Exec(sqlStmt string) error {
	_, err := h.db.Exec(sqlStmt)
	return err
}

func (h *Handle) Close() error {
	return h.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
