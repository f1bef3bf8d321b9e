// Package appctx constructs the process-wide application context: the one
// *logrus.Logger every component shares, the open store.Manager, and an
// in-process cache of the persisted AppSettings row (§5/§6). It is the
// outermost layer the host binds before dispatching to C4/C5/C6/C7/C9.
package appctx

import (
	"context"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/simsapa/tipitaka-engine/internal/model"
	"github.com/simsapa/tipitaka-engine/internal/store"
)

// Env var names consumed at this boundary, per §6. Everything else (theme,
// font size, API keys, ...) lives in app_settings and is layered under
// these by Settings.
const (
	EnvStorageDir     = "SIMSAPA_DIR"
	EnvReleaseChannel = "RELEASE_CHANNEL"
	EnvBootstrapLimit = "BOOTSTRAP_LIMIT"
)

// AppContext is the single point of truth a host process builds once and
// threads into every request handler.
type AppContext struct {
	Log   *logrus.Logger
	Store *store.Manager

	// ReleaseChannel and BootstrapLimit are read once from the
	// environment at New and handed to C10 (version probe) and C8
	// (bootstrap import) respectively; neither is re-read per request.
	ReleaseChannel string
	BootstrapLimit int

	mu       sync.Mutex
	settings *model.AppSettings // nil until first Settings call or explicit SaveSettings
}

// New opens the store.Manager at the given config and resolves the
// env-var layer of §6. log may be nil, in which case a default logrus
// logger is constructed here: this is the one process-wide logger every
// other component receives by reference.
func New(cfg store.Config, log *logrus.Logger) (*AppContext, error) {
	if log == nil {
		log = logrus.New()
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	mgr, err := store.Open(cfg, log)
	if err != nil {
		return nil, err
	}

	return &AppContext{
		Log:            log,
		Store:          mgr,
		ReleaseChannel: os.Getenv(EnvReleaseChannel),
		BootstrapLimit: parseBootstrapLimit(os.Getenv(EnvBootstrapLimit)),
	}, nil
}

func (a *AppContext) Close() error {
	return a.Store.Close()
}

// Settings returns the cached AppSettings, reading through to the
// userdata store on first access. Concurrent callers block on the same
// read-through rather than racing duplicate loads.
func (a *AppContext) Settings(ctx context.Context) (model.AppSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.settings != nil {
		return *a.settings, nil
	}

	s, err := a.Store.LoadAppSettings(ctx)
	if err != nil {
		return model.AppSettings{}, err
	}
	a.settings = &s
	return s, nil
}

// SaveSettings persists s and refreshes the in-process cache, matching the
// invalidate-on-save contract documented on store.Manager.SaveAppSettings.
func (a *AppContext) SaveSettings(ctx context.Context, s model.AppSettings) error {
	if err := a.Store.SaveAppSettings(ctx, s); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	cached := s
	a.settings = &cached
	return nil
}

// NewImportRunID mints a batch tag for a bootstrap import run (§B), used
// only to correlate log lines across the thousands of per-file log
// entries an importer emits; it never appears in a Sutta/DictWord UID.
func NewImportRunID() string {
	return uuid.NewString()
}

// parseBootstrapLimit returns 0 (no limit) for an absent or malformed
// value rather than erroring: BOOTSTRAP_LIMIT is an optional dev knob,
// not a value a host can get wrong in a way worth failing startup over.
func parseBootstrapLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
