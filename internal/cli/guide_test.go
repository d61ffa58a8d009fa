// pattern: Functional Core
package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestApp_PrintGuide(t *testing.T) {
	app := BuildApp("test", "", nil)
	buf := &bytes.Buffer{}
	app.PrintGuide(buf)
	output := buf.String()

	for _, want := range []string{
		"MEOWDASH SCRIPTING GUIDE",
		"OVERVIEW",
		"WORKFLOW",
		"COMMAND REFERENCE",
		"PANEL STATES",
		"EXIT CODES",
		"2  No running meowdash instance found",
		"Zoom levels: 50% 75% 90% 100% 110% 125% 150% 175% 200% (default 100%)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("guide missing %q", want)
		}
	}
}

func TestApp_PrintGuide_ListsRegisteredCommands(t *testing.T) {
	app := BuildApp("test", "", nil)
	buf := &bytes.Buffer{}
	app.PrintGuide(buf)
	output := buf.String()

	for name, cmd := range app.groups["panel"].Commands {
		if !strings.Contains(output, "panel "+name) {
			t.Errorf("guide missing command %q", "panel "+name)
		}
		if !strings.Contains(output, cmd.Usage) {
			t.Errorf("guide missing usage %q", cmd.Usage)
		}
	}
	for _, name := range topLevelOrder {
		if !strings.Contains(output, app.commands[name].Usage) {
			t.Errorf("guide missing usage for %q", name)
		}
	}
}
