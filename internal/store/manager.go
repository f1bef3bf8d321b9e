package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
)

// Manager owns the four logical stores for a process and is the single
// point of truth for where each lives on disk.
type Manager struct {
	Appdata       *Handle
	Userdata      *Handle
	Dictionaries  *Handle
	Dpd           *Handle
	log           *logrus.Logger
}

// Config describes where each store file lives. Appdata, Dictionaries,
// and Dpd are shipped read-only with the application and must already
// exist; Userdata is created on first run if absent.
type Config struct {
	Dir      string // the storage directory (see storage-path.txt, §6)
	PoolSize int

	// Bootstrap opens appdata/dictionaries/dpd read-write and applies
	// their schema, for the offline importer pipelines (C8) that build
	// these files before they are shipped read-only to end users. Normal
	// runtime use leaves this false.
	Bootstrap bool
}

func (c Config) path(name string) string {
	return filepath.Join(c.Dir, name+".sqlite3")
}

// Open opens all four stores per the first-run lifecycle in §4.1: the
// shipped stores must already exist (a typed NotFound error is returned,
// not a panic, if a stat fails — this must tolerate Android-style stat
// failures); userdata is created and migrated if missing.
func Open(cfg Config, log *logrus.Logger) (*Manager, error) {
	if log == nil {
		log = logrus.New()
	}
	m := &Manager{log: log}

	for _, shipped := range []struct {
		name   string
		dst    **Handle
		schema string
	}{
		{"appdata", &m.Appdata, appdataSchema},
		{"dictionaries", &m.Dictionaries, dictionariesSchema},
		{"dpd", &m.Dpd, dpdSchema},
	} {
		p := cfg.path(shipped.name)
		dsn := "file:" + p + "?mode=ro"
		if cfg.Bootstrap {
			dsn = "file:" + p
		} else if _, err := os.Stat(p); err != nil {
			return nil, corerr.Wrap(corerr.NotFound, shipped.name, fmt.Errorf("required store file missing at %s: %w", p, err))
		}
		h, err := OpenHandle(shipped.name, dsn, cfg.PoolSize, log)
		if err != nil {
			return nil, corerr.Wrap(corerr.Store, shipped.name, err)
		}
		if cfg.Bootstrap {
			if err := h.Exec(shipped.schema); err != nil {
				return nil, corerr.Wrap(corerr.Store, shipped.name, err)
			}
		}
		*shipped.dst = h
	}

	userdataPath := cfg.path("userdata")
	firstRun := false
	if _, err := os.Stat(userdataPath); err != nil {
		firstRun = true
	}
	uh, err := OpenHandle("userdata", "file:"+userdataPath, cfg.PoolSize, log)
	if err != nil {
		return nil, corerr.Wrap(corerr.Store, "userdata", err)
	}
	m.Userdata = uh

	if firstRun {
		log.WithField("store", "userdata").Info("first run, applying schema")
	}
	if err := m.migrateUserdata(context.Background()); err != nil {
		return nil, err
	}
	// appdata/dictionaries/dpd are shipped read-only with their schema
	// (including FTS5 indexes) already built; opening them mode=ro means
	// we must not try to (re-)run CREATE TABLE against them here.
	return m, nil
}

// PopulateFTS runs the static FTS5 population script. Bootstrap calls
// this once after importers have finished a batch.
func (m *Manager) PopulateFTS(ctx context.Context) error {
	if err := m.Appdata.Write(ctx, func(db *sql.DB) error {
		_, err := db.ExecContext(ctx, ftsPopulateSQL)
		return err
	}); err != nil {
		return corerr.Wrap(corerr.Store, "appdata", err)
	}
	return nil
}

func (m *Manager) Close() error {
	var firstErr error
	for _, h := range []*Handle{m.Appdata, m.Userdata, m.Dictionaries, m.Dpd} {
		if h == nil {
			continue
		}
		if err := h.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
