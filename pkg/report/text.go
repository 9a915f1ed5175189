package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const blankGlyph = "."

// TextRenderer renders matrix views for a terminal.
type TextRenderer struct {
	title  lipgloss.Style
	header lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	other  lipgloss.Style
	blank  lipgloss.Style
}

func NewTextRenderer() *TextRenderer {
	return &TextRenderer{
		title:  lipgloss.NewStyle().Bold(true),
		header: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		pass:   lipgloss.NewStyle().Foreground(lipgloss.Color("#93E9BE")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD1DC")).Bold(true),
		other:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		blank:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Table renders one view under its title using the last header row, the day row, as the
// column header. Empty views render as the title alone.
func (r *TextRenderer) Table(title string, headers [][]*Cell, rows [][]*Cell) string {
	sb := &strings.Builder{}
	sb.WriteString(r.title.Render(title))
	sb.WriteString("\n")
	if len(rows) == 0 {
		return sb.String()
	}

	var header []*Cell
	if len(headers) > 0 {
		header = headers[len(headers)-1]
	}

	width := 0
	for _, c := range header[:min(1, len(header))] {
		width = max(width, len(c.Text))
	}
	for _, row := range rows {
		width = max(width, len(row[0].Text))
	}

	if len(header) > 0 {
		line := make([]string, 0, len(header))
		for i, c := range header {
			if i == 0 {
				line = append(line, r.header.Render(fmt.Sprintf("%-*s", width, c.Text)))
				continue
			}
			line = append(line, r.header.Render(fmt.Sprintf("%2s", c.Text)))
		}
		sb.WriteString(strings.Join(line, " "))
		sb.WriteString("\n")
	}

	for _, row := range rows {
		line := make([]string, 0, len(row))
		for i, c := range row {
			if i == 0 {
				line = append(line, fmt.Sprintf("%-*s", width, c.Text))
				continue
			}
			line = append(line, r.cell(c))
		}
		sb.WriteString(strings.Join(line, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *TextRenderer) cell(c *Cell) string {
	switch {
	case c == Blank:
		return r.blank.Render(fmt.Sprintf("%2s", blankGlyph))
	case c.Failed():
		return r.fail.Render(fmt.Sprintf("%2s", c.Text))
	case c.IsRun() && c.Status == StatusPassed:
		return r.pass.Render(fmt.Sprintf("%2s", c.Text))
	case c.IsRun():
		return r.other.Render(fmt.Sprintf("%2s", c.Text))
	}
	return c.Text
}

// Render renders every non-empty view of the matrix in report order.
func (r *TextRenderer) Render(m *Matrix, title string) string {
	sb := &strings.Builder{}
	sb.WriteString(r.title.Render(title))
	sb.WriteString("\n\n")
	for _, v := range m.Views() {
		if len(v.Rows) == 0 {
			continue
		}
		sb.WriteString(r.Table(v.Title, v.Headers, v.Rows))
		sb.WriteString("\n")
	}
	return sb.String()
}
