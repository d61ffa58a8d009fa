package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"meowdash/internal/catalog"
)

// closeLabel is the selector row that empties the panel.
const closeLabel = "（关闭窗口）"

// selector is the tool picker overlay: a query line and the catalog
// entries that fuzzily match it.
type selector struct {
	open   bool
	panel  int
	query  string
	cursor int
}

// options lists what the selector offers for the current query. The empty
// query leads with the close row. A query that looks like an address and
// matches nothing can be loaded as-is.
func (s selector) options(entries []catalog.Entry) []catalog.Entry {
	var out []catalog.Entry
	if strings.TrimSpace(s.query) == "" {
		out = append(out, catalog.Entry{Label: closeLabel})
	}
	out = append(out, catalog.Filter(entries, s.query)...)
	if len(out) == 0 && looksLikeAddress(s.query) {
		q := strings.TrimSpace(s.query)
		out = append(out, catalog.Entry{Label: q, Address: q})
	}
	return out
}

func looksLikeAddress(q string) bool {
	q = strings.TrimSpace(q)
	if q == "" || strings.ContainsAny(q, " \t") {
		return false
	}
	return strings.Contains(q, "://") || strings.HasSuffix(q, ".html")
}

// handleKey edits the query or moves the cursor. It returns the chosen
// entry when enter is pressed on a row.
func (s *selector) handleKey(msg tea.KeyMsg, entries []catalog.Entry) (catalog.Entry, bool) {
	opts := s.options(entries)
	switch msg.String() {
	case "esc":
		s.open = false
		return catalog.Entry{}, false
	case "enter":
		if len(opts) == 0 {
			return catalog.Entry{}, false
		}
		s.open = false
		return opts[min(s.cursor, len(opts)-1)], true
	case "up", "ctrl+p", "shift+tab":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "ctrl+n", "tab":
		if s.cursor < len(opts)-1 {
			s.cursor++
		}
	case "backspace":
		if s.query != "" {
			r := []rune(s.query)
			s.query = string(r[:len(r)-1])
			s.cursor = 0
		}
	case "ctrl+u":
		s.query = ""
		s.cursor = 0
	default:
		switch msg.Type {
		case tea.KeyRunes:
			s.query += string(msg.Runes)
			s.cursor = 0
		case tea.KeySpace:
			s.query += " "
			s.cursor = 0
		}
	}
	return catalog.Entry{}, false
}
