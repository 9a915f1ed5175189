package report

import (
	"fmt"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
)

type CellKind int

const (
	KindBlank CellKind = iota
	KindHeader
	KindTest
	KindRun
	KindSource
	KindPlain
)

func (k CellKind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindHeader:
		return "header"
	case KindTest:
		return "test"
	case KindRun:
		return "run"
	case KindSource:
		return "source"
	case KindPlain:
		return "plain"
	}
	return fmt.Sprintf("CellKind(%d)", int(k))
}

type RunStatus int

const (
	StatusUnknown RunStatus = iota
	StatusPassed
	StatusFailed
)

// Cell is one rendering ready table cell. Text, Title and Link are unescaped.
type Cell struct {
	Kind    CellKind
	Text    string
	Link    string
	Title   string
	ColSpan int
	Status  RunStatus

	// group identifies the period a year or month header spans.
	group string
}

// Blank fills every (test, execution) pair without a run. Rows share this one value, so a
// blank cell is recognised by identity.
var Blank = &Cell{Kind: KindBlank}

func NewHeaderCell(text, link, title string) *Cell {
	return &Cell{Kind: KindHeader, Text: text, Link: link, Title: title}
}

func NewPlainCell(text string) *Cell {
	return &Cell{Kind: KindPlain, Text: text}
}

// NewRunCell classifies a run by its status name. Text is the first letter of the status.
func NewRunCell(status, link, title string) *Cell {
	c := &Cell{Kind: KindRun, Link: link, Title: title}
	switch status {
	case xrayv1.StatusPassed:
		c.Status = StatusPassed
	case xrayv1.StatusFailed:
		c.Status = StatusFailed
	}
	if status != "" {
		c.Text = status[:1]
	}
	return c
}

func (c *Cell) IsRun() bool {
	return c != nil && c.Kind == KindRun
}

func (c *Cell) Failed() bool {
	return c.IsRun() && c.Status == StatusFailed
}

// Passing is true for run cells that did not fail, including unknown statuses.
func (c *Cell) Passing() bool {
	return c.IsRun() && c.Status != StatusFailed
}
