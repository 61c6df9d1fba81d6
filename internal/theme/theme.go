// Package theme holds the editor color palettes. Each palette names the
// chroma style used for syntax highlighting and the glamour style used for
// assistant replies.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// Default is the palette of a fresh install.
const Default = "vs-dark"

// Theme defines the colors used for rendering.
type Theme struct {
	Name  string
	Label string
	Dark  bool

	// Chroma is the chroma style name for code.
	Chroma string

	AccentColor    string
	DividerColor   string
	MutedColor     string
	AddColor       string
	DelColor       string
	ErrorColor     string
	SuccessColor   string
	SelectionColor string
	MatchColor     string
}

var palettes = []Theme{
	{
		Name: "vs-dark", Label: "VS Dark", Dark: true, Chroma: "onedark",
		AccentColor: "39", DividerColor: "240", MutedColor: "245",
		AddColor: "34", DelColor: "196", ErrorColor: "203", SuccessColor: "78",
		SelectionColor: "237", MatchColor: "220",
	},
	{
		Name: "vs-light", Label: "VS Light", Dark: false, Chroma: "vs",
		AccentColor: "27", DividerColor: "244", MutedColor: "242",
		AddColor: "22", DelColor: "160", ErrorColor: "160", SuccessColor: "28",
		SelectionColor: "254", MatchColor: "178",
	},
	{
		Name: "github-dark", Label: "GitHub Dark", Dark: true, Chroma: "github-dark",
		AccentColor: "75", DividerColor: "238", MutedColor: "246",
		AddColor: "71", DelColor: "167", ErrorColor: "167", SuccessColor: "71",
		SelectionColor: "236", MatchColor: "179",
	},
	{
		Name: "monokai", Label: "Monokai", Dark: true, Chroma: "monokai",
		AccentColor: "148", DividerColor: "59", MutedColor: "102",
		AddColor: "148", DelColor: "197", ErrorColor: "197", SuccessColor: "148",
		SelectionColor: "237", MatchColor: "186",
	},
	{
		Name: "solarized-dark", Label: "Solarized Dark", Dark: true, Chroma: "solarized-dark",
		AccentColor: "33", DividerColor: "23", MutedColor: "66",
		AddColor: "64", DelColor: "160", ErrorColor: "160", SuccessColor: "64",
		SelectionColor: "235", MatchColor: "136",
	},
	{
		Name: "dracula", Label: "Dracula", Dark: true, Chroma: "dracula",
		AccentColor: "141", DividerColor: "60", MutedColor: "103",
		AddColor: "84", DelColor: "203", ErrorColor: "203", SuccessColor: "84",
		SelectionColor: "238", MatchColor: "228",
	},
}

// All returns every palette in display order.
func All() []Theme {
	return append([]Theme(nil), palettes...)
}

// Names lists the palette names.
func Names() []string {
	out := make([]string, len(palettes))
	for i, t := range palettes {
		out[i] = t.Name
	}
	return out
}

// Lookup returns the named palette.
func Lookup(name string) (Theme, bool) {
	for _, t := range palettes {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// ByName returns the named palette or the default one.
func ByName(name string) Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	return DefaultTheme()
}

// DefaultTheme returns the default palette.
func DefaultTheme() Theme {
	t, _ := Lookup(Default)
	return t
}

// GlamourStyle is the markdown style matching the palette.
func (t Theme) GlamourStyle() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}

func fg(color, s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

func (t Theme) AddText(s string) string     { return fg(t.AddColor, s) }
func (t Theme) DelText(s string) string     { return fg(t.DelColor, s) }
func (t Theme) DividerText(s string) string { return fg(t.DividerColor, s) }
func (t Theme) MutedText(s string) string   { return fg(t.MutedColor, s) }
func (t Theme) ErrorText(s string) string   { return fg(t.ErrorColor, s) }
func (t Theme) SuccessText(s string) string { return fg(t.SuccessColor, s) }

// AccentText renders s bold in the accent color.
func (t Theme) AccentText(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.AccentColor)).Render(s)
}

// SelectedLine renders a highlighted row.
func (t Theme) SelectedLine(s string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(t.SelectionColor)).Bold(true).Render(s)
}

// MatchText renders a search match.
func (t Theme) MatchText(s string, current bool) string {
	st := lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color(t.MatchColor))
	if !current {
		st = st.Background(lipgloss.Color(t.MutedColor))
	}
	return st.Render(s)
}
