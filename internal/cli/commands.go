// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"meowdash/internal/catalog"
	"meowdash/internal/config"
	"meowdash/internal/instance"
)

// ResolveDataDir returns the directory holding the config file and the
// lock and port files. An explicit configDir wins over the default.
func ResolveDataDir(configDir string) string {
	if configDir != "" {
		return configDir
	}
	return config.DefaultDir()
}

// BuildApp creates and configures the CLI application with all commands and groups.
// serve runs the dashboard without the terminal UI.
func BuildApp(version string, configDir string, serve func(args []string) error) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "serve",
		Summary: "Run the web dashboard without the terminal UI",
		Usage:   "Usage: meowdash serve",
		Run: func(args []string) error {
			if serve == nil {
				return errors.New("serve is not available")
			}
			if err := serve(args); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "catalog",
		Summary: "Print the tool catalog as JSON",
		Usage:   "Usage: meowdash catalog",
		Run: func(args []string) error {
			if err := writeCatalog(os.Stdout, ResolveDataDir(configDir)); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:             "status",
		Summary:          "Print every panel of the running dashboard as JSON",
		Usage:            "Usage: meowdash status",
		RequiresInstance: true,
		Run: func(args []string) error {
			delegate := Delegate{ConfigDir: configDir}
			delegate.Run(func(client *instance.Client) error {
				data, err := client.Panels()
				if err != nil {
					return err
				}
				return PrintJSON(data)
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove stale lock/port files from a crashed instance",
		Usage:   "Usage: meowdash cleanup",
		Run: func(args []string) error {
			return runCleanupCommand(configDir)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: meowdash version",
		Run: func(args []string) error {
			fmt.Println(version)
			return nil
		},
	})

	panelGroup := app.AddGroup("panel", "Drive the panels of a running dashboard")
	RegisterPanelCommands(panelGroup, configDir)

	return app
}

// writeCatalog prints the catalog the dashboard would offer, read from the
// config directory. It does not need a running instance.
func writeCatalog(w io.Writer, dir string) error {
	entries, err := config.Catalog(dir)
	if entries == nil && err != nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(catalog.New(entries).Entries())
}

// runCleanupCommand removes stale lock and port files from a crashed instance.
func runCleanupCommand(configDir string) error {
	dataDir := ResolveDataDir(configDir)

	fl, err := instance.Lock(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: a meowdash instance appears to be running. Stop it first.\n")
		os.Exit(1)
	}
	instance.Cleanup(dataDir, fl)
	fmt.Println("Cleaned up stale lock and port files.")
	return nil
}
