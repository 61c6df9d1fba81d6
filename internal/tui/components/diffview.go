package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/interpretive-systems/codecraft/internal/diffview"
	"github.com/interpretive-systems/codecraft/internal/theme"
	"github.com/interpretive-systems/codecraft/internal/tui/ansi"
)

// DiffView renders diff rows side by side or inline in a scrollable
// viewport.
type DiffView struct {
	rows       []diffview.Row
	viewport   viewport.Model
	sideBySide bool
	th         theme.Theme
}

func NewDiffView(th theme.Theme) *DiffView {
	return &DiffView{th: th, sideBySide: true}
}

func (d *DiffView) SetRows(rows []diffview.Row) {
	d.rows = rows
	d.viewport.GotoTop()
}

func (d *DiffView) Rows() []diffview.Row { return d.rows }

func (d *DiffView) SetTheme(th theme.Theme) { d.th = th }

func (d *DiffView) SideBySide() bool { return d.sideBySide }

func (d *DiffView) SetSideBySide(v bool) { d.sideBySide = v }

func (d *DiffView) Viewport() *viewport.Model { return &d.viewport }

// Render returns at most height lines of the diff.
func (d *DiffView) Render(width, height int) []string {
	var content []string
	switch {
	case len(d.rows) == 0:
		content = []string{d.th.MutedText("No changes")}
	case d.sideBySide:
		content = d.renderSideBySide(width)
	default:
		content = d.renderInline(width)
	}
	d.viewport.Width = width
	d.viewport.Height = height
	d.viewport.SetContent(strings.Join(content, "\n"))
	return strings.Split(d.viewport.View(), "\n")
}

func (d *DiffView) renderSideBySide(width int) []string {
	lines := make([]string, 0, len(d.rows))
	colW := (width - 1) / 2
	if colW < 10 {
		colW = 10
	}
	mid := d.th.DividerText("│")
	for _, r := range d.rows {
		if r.Kind == diffview.RowHunk {
			lines = append(lines, d.th.MutedText(ansi.Pad(r.Header, width)))
			continue
		}
		l := ansi.Pad(d.renderCell(r, true, colW), colW)
		rr := ansi.Pad(d.renderCell(r, false, colW), colW)
		lines = append(lines, l+mid+rr)
	}
	return lines
}

func (d *DiffView) renderInline(width int) []string {
	lines := make([]string, 0, len(d.rows))
	for _, r := range d.rows {
		switch r.Kind {
		case diffview.RowHunk:
			lines = append(lines, d.th.MutedText(r.Header))
		case diffview.RowContext:
			lines = append(lines, ansi.Clip("  "+r.Left, width))
		case diffview.RowAdd:
			lines = append(lines, d.th.AddText(ansi.Clip("+ "+r.Right, width)))
		case diffview.RowDel:
			lines = append(lines, d.th.DelText(ansi.Clip("- "+r.Left, width)))
		case diffview.RowReplace:
			lines = append(lines,
				d.th.DelText(ansi.Clip("- "+r.Left, width)),
				d.th.AddText(ansi.Clip("+ "+r.Right, width)))
		}
	}
	return lines
}

func (d *DiffView) renderCell(r diffview.Row, left bool, width int) string {
	no, text, marker := r.RightNo, r.Right, " "
	if left {
		no, text = r.LeftNo, r.Left
	}
	switch {
	case left && (r.Kind == diffview.RowDel || r.Kind == diffview.RowReplace):
		marker = "-"
	case !left && (r.Kind == diffview.RowAdd || r.Kind == diffview.RowReplace):
		marker = "+"
	case left && r.Kind == diffview.RowAdd, !left && r.Kind == diffview.RowDel:
		return ""
	}
	num := "    "
	if no > 0 {
		num = fmt.Sprintf("%4d", no)
	}
	bodyW := width - 7
	if bodyW < 1 {
		bodyW = 1
	}
	body := ansi.Clip(text, bodyW)
	switch marker {
	case "-":
		body = d.th.DelText(marker + " " + body)
	case "+":
		body = d.th.AddText(marker + " " + body)
	default:
		body = "  " + body
	}
	return d.th.MutedText(num) + " " + body
}
