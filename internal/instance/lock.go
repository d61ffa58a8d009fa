// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "meowdash.lock"
	portFileName = "meowdash.port"
)

// ErrRunning is returned by Lock when another dashboard holds the data dir.
var ErrRunning = errors.New("another meowdash instance is already running")

// Lock takes the data directory for this process. The caller releases it
// with Cleanup.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrRunning
	}
	return fl, nil
}

// WritePort records the web listener address so CLI commands can find it.
func WritePort(dataDir, addr string) error {
	return os.WriteFile(filepath.Join(dataDir, portFileName), []byte(addr), 0o600)
}

// Cleanup removes the port file and releases the lock. A nil lock only
// removes the port file, which is how the cleanup command clears a stale one.
func Cleanup(dataDir string, fl *flock.Flock) {
	_ = os.Remove(filepath.Join(dataDir, portFileName))
	if fl != nil {
		_ = fl.Unlock()
	}
}
