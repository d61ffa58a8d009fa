// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const healthTimeout = 2 * time.Second

// ErrNoInstance means no dashboard holds the lock in the data directory.
var ErrNoInstance = errors.New("no running meowdash instance found (start meowdash first)")

// Discover returns the base URL of the dashboard running against dataDir,
// e.g. "http://127.0.0.1:41234". The instance must hold the lock, have
// written its port file and answer the health check.
func Discover(dataDir string) (string, error) {
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return "", fmt.Errorf("check lock: %w", err)
	}
	if locked {
		_ = fl.Unlock()
		return "", ErrNoInstance
	}

	data, err := os.ReadFile(filepath.Join(dataDir, portFileName))
	if err != nil {
		return "", fmt.Errorf("meowdash is running but its port file is missing (is the web server disabled?): %w", err)
	}
	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", fmt.Errorf("meowdash port file is empty (try 'meowdash cleanup')")
	}

	baseURL := "http://" + addr
	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return "", fmt.Errorf("meowdash not responding (try 'meowdash cleanup'): %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("meowdash health check failed (status %d)", resp.StatusCode)
	}
	return baseURL, nil
}
