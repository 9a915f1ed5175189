// Package report builds the test plan report matrix: one row per test, one column per test
// execution, newest execution first, plus the derived views rendered in the report.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/util/sets"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/scraper"
)

// ErrUnexpectedCell is returned when an execution column holds a cell that is neither a run
// nor the blank placeholder.
var ErrUnexpectedCell = errors.New("unexpected cell")

const (
	DefaultSampleDepth = 14
	DefaultWeightBase  = 32
	DefaultColumns     = 42
	maxWeightBase      = 62
)

// DefaultSetupTeardown are the pseudo tests recorded for suite setup and teardown.
var DefaultSetupTeardown = []string{"BeforeSuite", "AfterSuite"}

type Options struct {
	// SampleDepth is the number of most recent executions weighted by recency.
	SampleDepth int
	// WeightBase is the exponent of the weight given to the most recent execution.
	WeightBase uint
	// Columns limits the report to this many most recent executions.
	Columns int
	// SetupTeardown names the last definition segments marking setup and teardown rows.
	SetupTeardown sets.Set[string]
	Links         LinkBuilder
}

func DefaultOptions() Options {
	return Options{
		SampleDepth:   DefaultSampleDepth,
		WeightBase:    DefaultWeightBase,
		Columns:       DefaultColumns,
		SetupTeardown: sets.New[string](DefaultSetupTeardown...),
	}
}

// TestRow describes the test shown in a row of All.
type TestRow struct {
	Key        string
	Definition string
	Source     string

	setupTeardown bool
}

// IsSetupTeardown reports whether the row records suite setup or teardown rather than a test.
func (r TestRow) IsSetupTeardown() bool {
	return r.setupTeardown
}

// Matrix holds the report tables. Rows of the views are shared with All.
type Matrix struct {
	// Headers are the year, month and day header rows.
	Headers [][]*Cell
	// All has one row per test: the test cell, one cell per execution and a location cell.
	All [][]*Cell
	// Failed holds tests that failed in the most recent execution.
	Failed [][]*Cell
	// NotRun holds tests without a run in the most recent execution.
	NotRun [][]*Cell
	// Tests is All without setup and teardown rows.
	Tests [][]*Cell
	// Graded is Tests ordered by score, worst first.
	Graded [][]*Cell
	// Counts tallies every execution column.
	Counts [][]*Cell
	// Rows describes the rows of All, in the same order.
	Rows []TestRow

	// Scores by test key, for every test that is not setup or teardown.
	Scores      map[string]int64
	Executions  []Execution
	SampleDepth int
}

// CountHeaders returns the headers for the Counts table: the day row is relabelled and has
// no location column.
func (m *Matrix) CountHeaders() [][]*Cell {
	headers := make([][]*Cell, len(m.Headers))
	copy(headers, m.Headers)
	last := len(headers) - 1
	if last < 0 {
		return headers
	}
	day := headers[last]
	row := make([]*Cell, 0, len(day))
	for i, c := range day {
		if i == len(day)-1 {
			break
		}
		if i == 0 {
			relabelled := *c
			relabelled.Text = "Day"
			c = &relabelled
		}
		row = append(row, c)
	}
	headers[last] = row
	return headers
}

func (o Options) isSetupTeardown(definition string) bool {
	segments := strings.Split(definition, ".")
	return o.SetupTeardown.Has(segments[len(segments)-1])
}

// Build fills the matrix for the ordered tests over the executions, newest first.
func Build(tests map[string]xrayv1.Test, order []string, execs []Execution, sourceMap map[string]string, opts Options) (*Matrix, error) {
	if opts.WeightBase > maxWeightBase {
		return nil, errors.Errorf("weight base %d exceeds %d", opts.WeightBase, maxWeightBase)
	}
	if opts.SetupTeardown == nil {
		opts.SetupTeardown = sets.New[string](DefaultSetupTeardown...)
	}
	if opts.Columns > 0 && len(execs) > opts.Columns {
		execs = execs[:opts.Columns]
	}

	m := &Matrix{
		Headers:     buildHeaders(execs, opts.Links),
		Scores:      map[string]int64{},
		Executions:  execs,
		SampleDepth: opts.SampleDepth,
	}

	for _, key := range order {
		test, ok := tests[key]
		if !ok {
			return nil, errors.Errorf("test %s is not part of the plan", key)
		}
		def := test.Definition()
		testRow := TestRow{Key: key, Definition: def, setupTeardown: opts.isSetupTeardown(def)}

		row := make([]*Cell, 0, len(execs)+2)
		row = append(row, &Cell{Kind: KindTest, Text: key, Title: def, Link: opts.Links.IssueLink(key)})
		for _, exe := range execs {
			run, ok := exe.Runs[key]
			if !ok {
				row = append(row, Blank)
				continue
			}
			title := fmt.Sprintf("%s\n\n%s", time.UnixMilli(exe.Timestamp).UTC().Format(time.ANSIC), run.Log())
			row = append(row, NewRunCell(run.Status.Name, opts.Links.RunLink(exe.Key, key), title))
		}
		if src, ok := sourceMap[def]; ok {
			testRow.Source = src
			row = append(row, &Cell{Kind: KindSource, Text: scraper.SuiteName(src), Title: src})
		} else {
			row = append(row, Blank)
		}
		m.All = append(m.All, row)
		m.Rows = append(m.Rows, testRow)
	}

	type scored struct {
		row   []*Cell
		score int64
	}
	var graded []scored
	for i, row := range m.All {
		if m.Rows[i].IsSetupTeardown() {
			continue
		}
		m.Tests = append(m.Tests, row)
		s := score(row, opts.SampleDepth, opts.WeightBase)
		m.Scores[order[i]] = s
		graded = append(graded, scored{row: row, score: s})

		if len(execs) == 0 {
			continue
		}
		if row[1].Failed() {
			m.Failed = append(m.Failed, row)
		}
		if row[1] == Blank {
			m.NotRun = append(m.NotRun, row)
		}
	}
	sort.SliceStable(graded, func(i, j int) bool {
		return graded[i].score < graded[j].score
	})
	for _, g := range graded {
		m.Graded = append(m.Graded, g.row)
	}

	counts, err := countHistory(m.All, m.Rows, len(execs))
	if err != nil {
		return nil, err
	}
	m.Counts = counts
	return m, nil
}

// score ranks a row, lower is worse. The first term weighs the sampleDepth most recent
// cells, starting at 2^weightBase and halving per cell, awarded for each run that did not
// fail. The second term walks every cell with a weight starting at the row length, awarded
// for each run that did not fail and decremented for each passing or blank cell.
func score(row []*Cell, sampleDepth int, weightBase uint) int64 {
	var s int64

	end := 1 + sampleDepth
	if end > len(row) {
		end = len(row)
	}
	weight := int64(1) << weightBase
	for _, c := range row[1:end] {
		if c.Passing() {
			s += weight
		}
		weight /= 2
	}

	weight = int64(len(row))
	for _, c := range row[1:] {
		if c.Passing() {
			s += weight
		}
		if c.Passing() || c == Blank {
			weight--
		}
	}
	return s
}

var countLabels = []string{
	"Passed Test Count",
	"Failed Test Count",
	"Total",
	"Not run Test Count",
	"Passed Before/After Suite",
	"Failed Before/After Suite",
	"Total Before/After Suite",
	"Not run Before/After Suite",
}

type tally struct {
	passed, failed, notRun int
}

// countHistory tallies each execution column, tests and setup/teardown rows apart.
func countHistory(rows [][]*Cell, testRows []TestRow, executions int) ([][]*Cell, error) {
	counts := make([][]*Cell, len(countLabels))
	for i, label := range countLabels {
		counts[i] = []*Cell{NewHeaderCell(label, "", "")}
	}

	for col := 1; col <= executions; col++ {
		var tests, st tally
		for i, row := range rows {
			t := &tests
			if testRows[i].IsSetupTeardown() {
				t = &st
			}
			switch c := row[col]; {
			case c == Blank:
				t.notRun++
			case c.Failed():
				t.failed++
			case c.IsRun():
				t.passed++
			default:
				return nil, errors.Wrapf(ErrUnexpectedCell, "row %d column %d holds a %s cell", i, col, c.Kind)
			}
		}
		for i, v := range []int{
			tests.passed, tests.failed, tests.passed + tests.failed, tests.notRun,
			st.passed, st.failed, st.passed + st.failed, st.notRun,
		} {
			counts[i] = append(counts[i], NewPlainCell(fmt.Sprintf("%d", v)))
		}
	}
	return counts, nil
}

// buildHeaders run length encodes execution dates into year and month header cells.
func buildHeaders(execs []Execution, links LinkBuilder) [][]*Cell {
	years := []*Cell{NewHeaderCell("Year", "", "")}
	months := []*Cell{NewHeaderCell("Month", "", "")}
	days := []*Cell{NewHeaderCell(`Test\Day`, "", "")}

	for _, exe := range execs {
		t := time.UnixMilli(exe.Timestamp).UTC()

		year := t.Format("2006")
		if last := years[len(years)-1]; last.group == year {
			last.ColSpan++
		} else {
			years = append(years, &Cell{Kind: KindHeader, Text: year, ColSpan: 1, group: year})
		}

		month := t.Format("2006-01")
		if last := months[len(months)-1]; last.group == month {
			last.ColSpan++
		} else {
			months = append(months, &Cell{Kind: KindHeader, Text: t.Format("Jan"), ColSpan: 1, group: month})
		}

		title := fmt.Sprintf("%s\ntestEnvironments:\n\t%s", exe.Summary, strings.Join(exe.Environments, "\n\t"))
		days = append(days, NewHeaderCell(t.Format("02"), links.IssueLink(exe.Key), title))
	}
	days = append(days, NewHeaderCell("Location", "", ""))

	return [][]*Cell{years, months, days}
}

// View is one titled table of the report.
type View struct {
	Title   string
	Headers [][]*Cell
	Rows    [][]*Cell
}

// Views returns the report tables in display order.
func (m *Matrix) Views() []View {
	return []View{
		{Title: fmt.Sprintf("Failed tests (%d)", len(m.Failed)), Headers: m.Headers, Rows: m.Failed},
		{Title: fmt.Sprintf("Test results graded on latest %d results, worst to best", m.SampleDepth), Headers: m.Headers, Rows: m.Graded},
		{Title: fmt.Sprintf("Tests not run (%d)", len(m.NotRun)), Headers: m.Headers, Rows: m.NotRun},
		{Title: fmt.Sprintf("Tests (%d)", len(m.Tests)), Headers: m.Headers, Rows: m.Tests},
		{Title: fmt.Sprintf("All tests (including BeforeSuite,AfterSuite,....) (%d)", len(m.All)), Headers: m.Headers, Rows: m.All},
		{Title: "Test count history", Headers: m.CountHeaders(), Rows: m.Counts},
	}
}
