package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

type Styles struct {
	flavor catppuccin.Flavor
}

func NewStyles(themeName string) *Styles {
	flavor := flavorFromName(themeName)
	return &Styles{flavor: flavor}
}

func flavorFromName(name string) catppuccin.Flavor {
	switch name {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	case "mocha":
		return catppuccin.Mocha
	default:
		return catppuccin.Mocha
	}
}

func (s *Styles) color(c catppuccin.Color) lipgloss.Color {
	return lipgloss.Color(c.Hex)
}

func (s *Styles) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.color(s.flavor.Mauve()))
}

func (s *Styles) SubtitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Subtext0()))
}

func (s *Styles) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Overlay0()))
}

// PanelStyle is the border around one panel. The focused panel's border is
// highlighted.
func (s *Styles) PanelStyle(focused bool) lipgloss.Style {
	border := s.flavor.Surface1()
	if focused {
		border = s.flavor.Mauve()
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.color(border))
}

func (s *Styles) PanelTitleStyle(focused bool) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true).Foreground(s.color(s.flavor.Text()))
	if focused {
		st = st.Foreground(s.color(s.flavor.Mauve()))
	}
	return st
}

func (s *Styles) BoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.color(s.flavor.Lavender())).
		Padding(0, 1)
}

func (s *Styles) InfoStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Text()))
}

func (s *Styles) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Teal()))
}

func (s *Styles) ZoomStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Peach()))
}

func (s *Styles) SelectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(s.color(s.flavor.Base())).
		Background(s.color(s.flavor.Mauve()))
}

func (s *Styles) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Red())).
		Bold(true)
}

func (s *Styles) SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Green()))
}

func (s *Styles) MascotStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.color(s.flavor.Yellow()))
}

func (s *Styles) LogTimestampStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Overlay1()))
}

func (s *Styles) LogScopeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.color(s.flavor.Sapphire()))
}

func (s *Styles) LogLevelStyle(level string) lipgloss.Style {
	c := s.flavor.Blue()
	switch level {
	case "DEBUG":
		c = s.flavor.Overlay0()
	case "WARN":
		c = s.flavor.Yellow()
	case "ERROR":
		c = s.flavor.Red()
	}
	return lipgloss.NewStyle().Foreground(s.color(c))
}
