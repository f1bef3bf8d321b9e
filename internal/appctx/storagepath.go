package appctx

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/simsapa/tipitaka-engine/internal/corerr"
	"github.com/simsapa/tipitaka-engine/internal/model"
)

// ResolveStorageDir implements the outer-overrides-inner layering of §6
// for the one setting that can't live in app_settings (the store files
// must be found before any store can be opened): SIMSAPA_DIR env var,
// then storage-path.txt, then the host's platform default.
func ResolveStorageDir(storagePathFile, platformDefault string) (string, error) {
	if dir := os.Getenv(EnvStorageDir); dir != "" {
		return dir, nil
	}
	dir, ok, err := ReadStoragePath(storagePathFile)
	if err != nil {
		return "", err
	}
	if ok && dir != "" {
		return dir, nil
	}
	return platformDefault, nil
}

// ReadStoragePath reads the storage-path.txt override file (§6): its
// trimmed contents name the storage directory, overriding the platform
// default. A missing file is not an error; callers fall back to their own
// platform default.
func ReadStoragePath(path string) (dir string, ok bool, err error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, corerr.Wrap(corerr.Store, "storage-path.txt", err)
	}
	return strings.TrimSpace(string(raw)), true, nil
}

// WriteStoragePath atomically rewrites storage-path.txt so a crash
// mid-write never leaves a truncated or partially-written override file
// behind (§B: github.com/natefinch/atomic). The file is a bare trimmed
// string, not TOML or JSON, per §6.
func WriteStoragePath(path, dir string) error {
	if err := atomic.WriteFile(path, strings.NewReader(dir)); err != nil {
		return corerr.Wrap(corerr.Store, "storage-path.txt", err)
	}
	return nil
}

// WriteSettingsSnapshot atomically writes a JSON export of the current
// AppSettings to path, for host tooling that wants to inspect or back up
// the live configuration without opening userdata.sqlite3 directly.
func WriteSettingsSnapshot(path string, s model.AppSettings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return corerr.Wrap(corerr.Decode, "app-settings-snapshot", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(raw)); err != nil {
		return corerr.Wrap(corerr.Store, "app-settings-snapshot", err)
	}
	return nil
}
