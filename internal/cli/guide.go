// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"meowdash/internal/dashboard"
)

// PrintGuide prints the scripting guide: how to drive a running dashboard
// from the shell, followed by the command reference built from the
// registered commands.
func (a *App) PrintGuide(w io.Writer) {
	fmt.Fprintln(w, "MEOWDASH SCRIPTING GUIDE")
	fmt.Fprintln(w, "========================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "OVERVIEW")
	fmt.Fprintln(w, "--------")
	fmt.Fprintln(w, "Meowdash shows four AI tools side by side in a 2x2 grid. One dashboard runs")
	fmt.Fprintln(w, "per config directory (enforced by file lock). Panel commands talk to it over")
	fmt.Fprintln(w, "its local HTTP API, so the dashboard must have its web server enabled.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "WORKFLOW")
	fmt.Fprintln(w, "--------")
	fmt.Fprintln(w, "  1. Put a tool in a panel:")
	fmt.Fprintln(w, "     meowdash panel select 2 https://chatglm.cn/chat")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  2. Wait for it to load (exits 1 if it failed):")
	fmt.Fprintln(w, "     meowdash panel wait 2")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  3. Adjust it:")
	fmt.Fprintln(w, "     meowdash panel zoom 2 125")
	fmt.Fprintln(w, "     meowdash panel fullscreen 2")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  4. Recover from a failure:")
	fmt.Fprintln(w, "     meowdash panel retry 2")
	fmt.Fprintln(w, "     meowdash panel open 2")
	fmt.Fprintln(w)

	a.printCommandReference(w)

	fmt.Fprintln(w, "PANEL STATES")
	fmt.Fprintln(w, "------------")
	fmt.Fprintln(w, "  empty    No tool selected.")
	fmt.Fprintln(w, "  loading  An attempt is in flight; it fails when the load timeout passes.")
	fmt.Fprintln(w, "  loaded   The tool is showing. Zoom, refresh and fullscreen are enabled.")
	fmt.Fprintln(w, "  failed   The attempt failed; 'retry' starts a new one.")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Zoom levels: %s (default %d%%).\n", zoomLevels(), int(dashboard.Scales[dashboard.DefaultZoomIndex]*100))
	fmt.Fprintln(w, "Only one panel is fullscreen at a time; making another fullscreen switches.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "EXIT CODES")
	fmt.Fprintln(w, "----------")
	fmt.Fprintln(w, "  0  Success")
	fmt.Fprintln(w, "  1  Error (invalid arguments, refused operation, failed load, etc.)")
	fmt.Fprintln(w, "  2  No running meowdash instance found")
}

func zoomLevels() string {
	levels := make([]string, len(dashboard.Scales))
	for i, s := range dashboard.Scales {
		levels[i] = strconv.Itoa(int(s*100+0.5)) + "%"
	}
	return strings.Join(levels, " ")
}

// printCommandReference prints the dynamic command reference section
// by iterating registered commands and groups.
func (a *App) printCommandReference(w io.Writer) {
	fmt.Fprintln(w, "COMMAND REFERENCE")
	fmt.Fprintln(w, "-----------------")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Top-level commands:")
	for _, name := range topLevelOrder {
		if cmd, ok := a.commands[name]; ok {
			fmt.Fprintf(w, "  %-18s %s\n", cmd.Name, cmd.Summary)
			fmt.Fprintf(w, "                     %s\n", cmd.Usage)
		}
	}
	fmt.Fprintln(w)

	for _, groupName := range groupOrder {
		group, ok := a.groups[groupName]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s commands (%s):\n", group.Name, group.Summary)
		for _, name := range slices.Sorted(maps.Keys(group.Commands)) {
			cmd := group.Commands[name]
			fmt.Fprintf(w, "  %-18s %s\n", groupName+" "+cmd.Name, cmd.Summary)
			fmt.Fprintf(w, "                     %s\n", cmd.Usage)
		}
		fmt.Fprintln(w)
	}
}
