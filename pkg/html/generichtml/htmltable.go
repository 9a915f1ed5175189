package generichtml

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

type HTMLItem interface {
	ToHTML() string
}

// HTMLText is literal text, escaped when rendered.
type HTMLText string

func (t HTMLText) ToHTML() string {
	return html.EscapeString(string(t))
}

// HTMLElement renders as <Element params...>content</Element>. Text is raw markup, used only
// when there are no HTMLItems. Param values are escaped.
type HTMLElement struct {
	Params    map[string]string
	Text      string
	HTMLItems []HTMLItem
	Element   string
}

func (t HTMLElement) ToHTML() string {
	sb := &strings.Builder{}

	sb.WriteString("<" + t.Element)

	// Order param keys
	for _, paramKey := range sets.List(sets.KeySet(t.Params)) {
		fmt.Fprintf(sb, ` %s="%s"`, paramKey, html.EscapeString(t.Params[paramKey]))
	}

	sb.WriteString(">")

	if len(t.HTMLItems) != 0 {
		for _, item := range t.HTMLItems {
			sb.WriteString(item.ToHTML())
		}
	} else {
		sb.WriteString(t.Text)
	}

	sb.WriteString("</" + t.Element + ">")

	return sb.String()
}

func NewHTMLLinkWithParams(text string, linkURL *url.URL, params map[string]string) HTMLElement {
	t := HTMLElement{
		Element: "a",
		Text:    html.EscapeString(text),
		Params:  map[string]string{},
	}

	for k, v := range params {
		t.Params[k] = v
	}

	if _, ok := t.Params["href"]; ok {
		return t
	}

	t.Params["href"] = linkURL.String()
	return t
}

func NewHTMLLink(text string, linkURL *url.URL) HTMLElement {
	return NewHTMLLinkWithParams(text, linkURL, nil)
}

// NewHTMLLinkItems links arbitrary content, opening the target in a new tab.
func NewHTMLLinkItems(href string, items ...HTMLItem) HTMLElement {
	return HTMLElement{
		Element:   "a",
		Params:    map[string]string{"href": href, "target": "_blank"},
		HTMLItems: items,
	}
}

type HTMLTableHeaderRowItem struct {
	Text      string
	HTMLItems []HTMLItem
	Params    map[string]string
}

func (r HTMLTableHeaderRowItem) ToHTML() string {
	return HTMLElement{
		Element:   "th",
		Params:    r.Params,
		Text:      r.Text,
		HTMLItems: r.HTMLItems,
	}.ToHTML()
}

type HTMLTableRowItem struct {
	Text      string
	HTMLItems []HTMLItem
	Params    map[string]string
}

func (r HTMLTableRowItem) ToHTML() string {
	return HTMLElement{
		Element:   "td",
		Params:    r.Params,
		HTMLItems: r.HTMLItems,
		Text:      r.Text,
	}.ToHTML()
}

type HTMLTableRow struct {
	items  []HTMLItem
	params map[string]string
}

func NewHTMLTableRowWithItems(p map[string]string, items []HTMLItem) HTMLTableRow {
	return HTMLTableRow{
		items:  items,
		params: p,
	}
}

func NewHTMLTableRow(p map[string]string) HTMLTableRow {
	return HTMLTableRow{
		params: p,
	}
}

func (r *HTMLTableRow) AddItems(items []HTMLItem) {
	r.items = append(r.items, items...)
}

func (r HTMLTableRow) ToHTML() string {
	sb := strings.Builder{}
	sb.WriteString("\n  ")
	for _, item := range r.items {
		sb.WriteString("  " + item.ToHTML() + "\n  ")
	}

	t := HTMLElement{
		Element: "tr",
		Params:  r.params,
		Text:    sb.String(),
	}

	return "  " + t.ToHTML() + "\n"
}

type HTMLTable struct {
	headerRows []HTMLTableRow
	rows       []HTMLTableRow
	params     map[string]string
}

func NewHTMLTable(p map[string]string) HTMLTable {
	return HTMLTable{
		params: p,
	}
}

func (h *HTMLTable) AddHeaderRow(headerRow HTMLTableRow) {
	h.headerRows = append(h.headerRows, headerRow)
}

func (h *HTMLTable) AddRow(row HTMLTableRow) {
	h.rows = append(h.rows, row)
}

// Len is the number of body rows.
func (h HTMLTable) Len() int {
	return len(h.rows)
}

func (h HTMLTable) ToHTML() string {
	sb := &strings.Builder{}
	sb.WriteString("\n")

	for _, row := range h.headerRows {
		sb.WriteString(row.ToHTML())
	}

	for _, row := range h.rows {
		sb.WriteString(row.ToHTML())
	}

	return HTMLElement{
		Element: "table",
		Params:  h.params,
		Text:    sb.String(),
	}.ToHTML()
}
