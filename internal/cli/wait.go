// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"meowdash/internal/dashboard"
	"meowdash/internal/instance"
)

// ErrPanelFailed is returned by WaitPanel when the attempt ended in failure.
var ErrPanelFailed = errors.New("panel failed to load")

// WaitConfig configures the wait polling behavior.
type WaitConfig struct {
	Panel    int
	Interval time.Duration
	Writer   io.Writer
}

// WaitPanel polls a panel until it is no longer loading and returns its
// final view. State changes are written as they are seen. A single failed
// poll is retried on the next tick.
func WaitPanel(ctx context.Context, client *instance.Client, cfg WaitConfig) (dashboard.PanelView, error) {
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	var (
		last       dashboard.PanelView
		seen       bool
		retryCount int
	)
	for {
		data, err := client.Panel(cfg.Panel)
		if err != nil {
			retryCount++
			if retryCount > 1 {
				return last, err
			}
		} else {
			retryCount = 0
			var v dashboard.PanelView
			if err := json.Unmarshal(data, &v); err != nil {
				return last, fmt.Errorf("failed to parse panel: %w", err)
			}
			if !seen || v.State != last.State || v.Token != last.Token {
				_, _ = fmt.Fprintf(cfg.Writer, "panel %d: %s %s\n", v.ID, v.State, v.Title)
			}
			last, seen = v, true

			switch v.State {
			case dashboard.StateLoaded, dashboard.StateEmpty:
				return v, nil
			case dashboard.StateFailed:
				if v.Failure != nil {
					for _, cause := range v.Failure.Causes {
						_, _ = fmt.Fprintf(cfg.Writer, "  - %s\n", cause)
					}
				}
				return v, ErrPanelFailed
			}
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}
