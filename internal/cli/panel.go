// pattern: Imperative Shell
package cli

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"meowdash/internal/dashboard"
	"meowdash/internal/instance"
)

// RegisterPanelCommands registers the panel command group commands.
// Every command delegates to the running dashboard found through configDir.
func RegisterPanelCommands(group *Group, configDir string) {
	simple := func(name, summary string, call func(*instance.Client, int) ([]byte, error)) {
		usage := "Usage: meowdash panel " + name + " <panel>"
		group.AddCommand(&Command{
			Name:             name,
			Summary:          summary,
			Usage:            usage,
			RequiresInstance: true,
			Run: func(args []string) error {
				if len(args) != 1 {
					return errors.New("expected a panel number")
				}
				id, err := parsePanel(args[0])
				if err != nil {
					return err
				}
				delegatePrint(configDir, func(c *instance.Client) ([]byte, error) { return call(c, id) })
				return nil
			},
		})
	}

	simple("show", "Print one panel as JSON", (*instance.Client).Panel)
	simple("retry", "Reload a panel whose tool failed", (*instance.Client).Retry)
	simple("open", "Open a panel's tool outside the dashboard", (*instance.Client).Open)
	simple("refresh", "Reload a loaded panel", (*instance.Client).Refresh)
	simple("close", "Empty a panel", func(c *instance.Client, id int) ([]byte, error) {
		return c.Select(id, "", "")
	})

	group.AddCommand(&Command{
		Name:             "list",
		Summary:          "Print every panel as JSON",
		Usage:            "Usage: meowdash panel list",
		RequiresInstance: true,
		Run: func(args []string) error {
			delegatePrint(configDir, (*instance.Client).Panels)
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "select",
		Summary:          "Load a tool into a panel",
		Usage:            "Usage: meowdash panel select <panel> <address> [-l/--label name]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs := flag.NewFlagSet("panel select", flag.ContinueOnError)
			label := fs.StringP("label", "l", "", "selector label (defaults to the catalog's)")
			if err := fs.Parse(args); err != nil {
				return err
			}
			if fs.NArg() != 2 {
				return errors.New("expected a panel number and an address")
			}
			id, err := parsePanel(fs.Arg(0))
			if err != nil {
				return err
			}
			address := fs.Arg(1)
			delegatePrint(configDir, func(c *instance.Client) ([]byte, error) {
				return c.Select(id, *label, address)
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "zoom",
		Summary:          "Zoom a panel: in, out, reset or a percentage",
		Usage:            "Usage: meowdash panel zoom <panel> <in|out|reset|percent>",
		RequiresInstance: true,
		Run: func(args []string) error {
			if len(args) != 2 {
				return errors.New("expected a panel number and a zoom action")
			}
			id, err := parsePanel(args[0])
			if err != nil {
				return err
			}
			action := strings.ToLower(strings.TrimSuffix(args[1], "%"))
			switch action {
			case "in", "out", "reset":
				delegatePrint(configDir, func(c *instance.Client) ([]byte, error) { return c.Zoom(id, action) })
				return nil
			}
			index, err := zoomIndex(action)
			if err != nil {
				return err
			}
			delegatePrint(configDir, func(c *instance.Client) ([]byte, error) { return c.SetZoom(id, index) })
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "fullscreen",
		Summary:          "Show a panel alone, or return to the grid",
		Usage:            "Usage: meowdash panel fullscreen <panel> [on|off]",
		RequiresInstance: true,
		Run: func(args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return errors.New("expected a panel number")
			}
			id, err := parsePanel(args[0])
			if err != nil {
				return err
			}
			on := true
			if len(args) == 2 {
				switch args[1] {
				case "on":
				case "off":
					on = false
				default:
					return fmt.Errorf("fullscreen must be on or off, got %q", args[1])
				}
			}
			delegatePrint(configDir, func(c *instance.Client) ([]byte, error) { return c.Fullscreen(id, on) })
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "wait",
		Summary:          "Wait until a panel finishes loading",
		Usage:            "Usage: meowdash panel wait <panel> [-t/--timeout 30s] [-i/--interval 500ms]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs := flag.NewFlagSet("panel wait", flag.ContinueOnError)
			timeout := fs.DurationP("timeout", "t", 30*time.Second, "give up after this long")
			interval := fs.DurationP("interval", "i", 500*time.Millisecond, "polling interval")
			if err := fs.Parse(args); err != nil {
				return err
			}
			if fs.NArg() != 1 {
				return errors.New("expected a panel number")
			}
			id, err := parsePanel(fs.Arg(0))
			if err != nil {
				return err
			}

			delegate := Delegate{ConfigDir: configDir}
			client := delegate.Client()
			if client == nil {
				return nil
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
			defer cancelTimeout()

			_, err = WaitPanel(ctx, client, WaitConfig{Panel: id, Interval: *interval, Writer: os.Stdout})
			if err != nil {
				fmt.Fprintf(delegate.Stderr, "error: %v\n", err)
				delegate.ExitFunc(1)
			}
			return nil
		},
	})
}

// delegatePrint runs call against the running dashboard and prints its JSON.
func delegatePrint(configDir string, call func(*instance.Client) ([]byte, error)) {
	delegate := Delegate{ConfigDir: configDir}
	delegate.Run(func(client *instance.Client) error {
		data, err := call(client)
		if err != nil {
			return err
		}
		return PrintJSON(data)
	})
}

func parsePanel(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 || id > dashboard.PanelCount {
		return 0, fmt.Errorf("panel must be 1 to %d, got %q", dashboard.PanelCount, arg)
	}
	return id, nil
}

// zoomIndex maps a percentage such as "125" to its zoom level.
func zoomIndex(percent string) (int, error) {
	p, err := strconv.Atoi(percent)
	if err != nil {
		return 0, fmt.Errorf("zoom must be in, out, reset or a percentage, got %q", percent)
	}
	levels := make([]string, 0, len(dashboard.Scales))
	for i, s := range dashboard.Scales {
		pct := int(math.Round(s * 100))
		if pct == p {
			return i, nil
		}
		levels = append(levels, strconv.Itoa(pct))
	}
	return 0, fmt.Errorf("zoom %d%% is not a level (%s)", p, strings.Join(levels, ", "))
}
