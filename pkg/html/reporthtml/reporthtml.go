// Package reporthtml renders a report matrix as a self-contained HTML page.
package reporthtml

import (
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/openshift/testgrade/pkg/html/generichtml"
	"github.com/openshift/testgrade/pkg/report"
)

const (
	passStyle  = "text-align:center; vertical-align:middle; background-color:#93E9BE;"
	failStyle  = "text-align:center; vertical-align:middle; background-color:#FFD1DC;"
	runStyle   = "text-align:center; vertical-align:middle;"
	testStyle  = "background-color:#96d4d4;"
	srcStyle   = "font-size:small;"
	plainStyle = "text-align:center; vertical-align:middle"

	// run cells are clickable but show only their colour
	passMark  = `<span style="opacity:0;">&#x2713;</span>`
	failMark  = `<span style="opacity:0;">&#x2717;</span>`
	otherMark = `<span style="opacity:0;"> </span>`
)

// Page describes the report page a matrix is rendered into.
type Page struct {
	PlanKey      string
	// Summary of the test plan issue, optional.
	Summary      string
	Environments []string
	Links        report.LinkBuilder
	Generated    time.Time
}

// Title is the page title, the plan key followed by the environments.
func (p Page) Title() string {
	title := "E2E Results " + p.PlanKey
	if len(p.Environments) > 0 {
		title += " (" + strings.Join(p.Environments, ", ") + ")"
	}
	return title
}

// FileName is the report file name for the plan and environments.
func FileName(planKey string, envs []string) string {
	return fmt.Sprintf("e2e-report-%s-%s.html", planKey, strings.Join(envs, "-"))
}

// Render writes the page with every non-empty view of the matrix.
func Render(w io.Writer, m *report.Matrix, page Page) error {
	sb := &strings.Builder{}

	title := html.EscapeString(page.Title())
	fmt.Fprintf(sb, generichtml.HTMLPageStart, title, title)

	planLink := generichtml.NewHTMLLinkItems(page.Links.IssueLink(page.PlanKey), generichtml.HTMLText(page.PlanKey))
	heading := planLink.ToHTML()
	if page.Summary != "" {
		heading += " " + html.EscapeString(page.Summary)
	}
	fmt.Fprintf(sb, "<h2>Test Plan %s</h2>\n", heading)
	if len(page.Environments) > 0 {
		fmt.Fprintf(sb, "<p>Test Environments: %s</p>\n", html.EscapeString(strings.Join(page.Environments, ", ")))
	}

	for _, v := range m.Views() {
		sb.WriteString(Table(v))
	}

	generated := page.Generated
	if generated.IsZero() {
		generated = time.Now()
	}
	fmt.Fprintf(sb, generichtml.HTMLPageEnd, generated.UTC().Format(time.RFC1123))

	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "could not write report")
}

// Table renders one view under its heading. An empty view renders as nothing.
func Table(v report.View) string {
	if len(v.Rows) == 0 {
		return ""
	}

	table := generichtml.NewHTMLTable(map[string]string{})
	for _, header := range v.Headers {
		table.AddHeaderRow(generichtml.NewHTMLTableRowWithItems(map[string]string{}, items(header)))
	}
	for _, row := range v.Rows {
		table.AddRow(generichtml.NewHTMLTableRowWithItems(map[string]string{}, items(row)))
	}

	return fmt.Sprintf("<p><h2>%s</h2>\n%s\n</p><br><hr>\n", html.EscapeString(v.Title), table.ToHTML())
}

func items(cells []*report.Cell) []generichtml.HTMLItem {
	out := make([]generichtml.HTMLItem, 0, len(cells))
	for _, c := range cells {
		out = append(out, Cell(c))
	}
	return out
}

// Cell converts one matrix cell into a table header or data item.
func Cell(c *report.Cell) generichtml.HTMLItem {
	params := map[string]string{}
	if c.Title != "" {
		params["title"] = c.Title
	}
	if c.ColSpan > 0 {
		params["colspan"] = fmt.Sprintf("%d", c.ColSpan)
	}

	var content generichtml.HTMLItem = generichtml.HTMLText(c.Text)
	switch c.Kind {
	case report.KindRun:
		switch {
		case c.Failed():
			params["style"] = failStyle
			content = rawHTML(failMark)
		case c.Status == report.StatusPassed:
			params["style"] = passStyle
			content = rawHTML(passMark)
		default:
			params["style"] = runStyle
			content = rawHTML(otherMark)
		}
	case report.KindTest:
		params["style"] = testStyle
	case report.KindSource:
		params["style"] = srcStyle
	case report.KindPlain:
		params["style"] = plainStyle
	}
	if c.Link != "" {
		content = generichtml.NewHTMLLinkItems(c.Link, content)
	}

	if c.Kind == report.KindHeader {
		return generichtml.HTMLTableHeaderRowItem{Params: params, HTMLItems: []generichtml.HTMLItem{content}}
	}
	return generichtml.HTMLTableRowItem{Params: params, HTMLItems: []generichtml.HTMLItem{content}}
}

type rawHTML string

func (r rawHTML) ToHTML() string {
	return string(r)
}
