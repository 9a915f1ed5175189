package report

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
)

func newTest(key, def string) xrayv1.Test {
	return xrayv1.Test{IssueID: "id-" + key, Jira: xrayv1.JiraFields{Key: key}, Unstructured: &def}
}

func newRun(key, status string, finished int64) xrayv1.TestRun {
	return xrayv1.TestRun{
		Status:     xrayv1.RunStatus{Name: status},
		Test:       xrayv1.RunTest{Jira: xrayv1.JiraFields{Key: key}},
		FinishedOn: xrayv1.Timestamp(finished),
		Results:    []xrayv1.RunResult{{Log: "log of " + key}},
	}
}

func millis(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 10, 0, 0, 0, time.UTC).UnixMilli()
}

func newExecution(key string, ts int64, runs ...xrayv1.TestRun) Execution {
	byTest := map[string]xrayv1.TestRun{}
	for _, r := range runs {
		byTest[r.Key()] = r
	}
	return Execution{Key: key, Summary: "summary " + key, Environments: []string{"k8s"}, Timestamp: ts, Runs: byTest}
}

func fixture() (map[string]xrayv1.Test, []string, []Execution, map[string]string) {
	tests := map[string]xrayv1.Test{
		"MQ-1": newTest("MQ-1", "A.suite one"),
		"MQ-2": newTest("MQ-2", "A.suite two"),
		"MQ-3": newTest("MQ-3", "A.BeforeSuite"),
		"MQ-4": newTest("MQ-4", "B.other"),
	}
	e3, e2, e1 := millis(2022, 1, 2), millis(2022, 1, 1), millis(2021, 12, 31)
	execs := []Execution{
		newExecution("MQ-30", e3, newRun("MQ-1", "FAILED", e3), newRun("MQ-2", "PASSED", e3), newRun("MQ-3", "PASSED", e3)),
		newExecution("MQ-20", e2, newRun("MQ-1", "PASSED", e2), newRun("MQ-2", "PASSED", e2), newRun("MQ-3", "FAILED", e2), newRun("MQ-4", "PASSED", e2)),
		newExecution("MQ-10", e1, newRun("MQ-1", "PASSED", e1), newRun("MQ-2", "FAILED", e1)),
	}
	sourceMap := map[string]string{
		"A.suite one": "/src/suite_a/a_test.go",
		"A.suite two": "/src/suite_a/a_test.go",
		"B.other":     "/src/suite_b/b_test.go",
	}
	return tests, []string{"MQ-1", "MQ-2", "MQ-3", "MQ-4"}, execs, sourceMap
}

func keys(rows [][]*Cell) []string {
	var k []string
	for _, row := range rows {
		k = append(k, row[0].Text)
	}
	return k
}

func texts(row []*Cell) []string {
	var t []string
	for _, c := range row {
		t = append(t, c.Text)
	}
	return t
}

func TestBuild(t *testing.T) {
	tests, order, execs, sourceMap := fixture()
	opts := DefaultOptions()
	opts.SampleDepth = 2
	opts.WeightBase = 4

	m, err := Build(tests, order, execs, sourceMap, opts)
	require.NoError(t, err)

	t.Run("all rows", func(t *testing.T) {
		require.Len(t, m.All, 4)
		assert.Equal(t, []string{"MQ-1", "F", "P", "P", "suite_a"}, texts(m.All[0]))
		assert.Equal(t, []string{"MQ-2", "P", "P", "F", "suite_a"}, texts(m.All[1]))
		assert.Equal(t, []string{"MQ-3", "P", "F", "", ""}, texts(m.All[2]))
		assert.Equal(t, []string{"MQ-4", "", "P", "", "suite_b"}, texts(m.All[3]))
		for _, row := range m.All {
			assert.Len(t, row, len(execs)+2)
		}
		assert.Same(t, Blank, m.All[3][1])
		assert.Same(t, Blank, m.All[2][4])
	})

	t.Run("cells", func(t *testing.T) {
		test := m.All[0][0]
		assert.Equal(t, KindTest, test.Kind)
		assert.Equal(t, "A.suite one", test.Title)
		assert.Equal(t, "https://mayadata.atlassian.net/browse/MQ-1", test.Link)

		run := m.All[0][1]
		assert.True(t, run.Failed())
		assert.Contains(t, run.Link, "ac.testExecIssueKey=MQ-30")
		assert.Contains(t, run.Link, "ac.testIssueKey=MQ-1")
		assert.Equal(t, "Sun Jan  2 10:00:00 2022\n\nlog of MQ-1", run.Title)

		src := m.All[0][4]
		assert.Equal(t, KindSource, src.Kind)
		assert.Equal(t, "/src/suite_a/a_test.go", src.Title)
	})

	t.Run("rows", func(t *testing.T) {
		require.Len(t, m.Rows, 4)
		assert.True(t, m.Rows[2].IsSetupTeardown())
		assert.False(t, m.Rows[0].IsSetupTeardown())
		assert.Equal(t, "/src/suite_b/b_test.go", m.Rows[3].Source)
		assert.Equal(t, "", m.Rows[2].Source)
	})

	t.Run("views", func(t *testing.T) {
		assert.Equal(t, []string{"MQ-1"}, keys(m.Failed))
		assert.Equal(t, []string{"MQ-4"}, keys(m.NotRun))
		assert.Equal(t, []string{"MQ-1", "MQ-2", "MQ-4"}, keys(m.Tests))
		assert.Equal(t, []string{"MQ-4", "MQ-1", "MQ-2"}, keys(m.Graded))
	})

	t.Run("scores", func(t *testing.T) {
		assert.Equal(t, map[string]int64{"MQ-1": 17, "MQ-2": 33, "MQ-4": 12}, m.Scores)
	})

	t.Run("headers", func(t *testing.T) {
		require.Len(t, m.Headers, 3)
		years, months, days := m.Headers[0], m.Headers[1], m.Headers[2]
		assert.Equal(t, []string{"Year", "2022", "2021"}, texts(years))
		assert.Equal(t, 2, years[1].ColSpan)
		assert.Equal(t, 1, years[2].ColSpan)
		assert.Equal(t, []string{"Month", "Jan", "Dec"}, texts(months))
		assert.Equal(t, 2, months[1].ColSpan)
		assert.Equal(t, []string{`Test\Day`, "02", "01", "31", "Location"}, texts(days))
		assert.Equal(t, "summary MQ-30\ntestEnvironments:\n\tk8s", days[1].Title)
		assert.Equal(t, "https://mayadata.atlassian.net/browse/MQ-30", days[1].Link)

		counts := m.CountHeaders()
		assert.Equal(t, []string{"Day", "02", "01", "31"}, texts(counts[2]))
		assert.Equal(t, `Test\Day`, m.Headers[2][0].Text)
	})

	t.Run("counts", func(t *testing.T) {
		expected := [][]string{
			{"Passed Test Count", "1", "3", "1"},
			{"Failed Test Count", "1", "0", "1"},
			{"Total", "2", "3", "2"},
			{"Not run Test Count", "1", "0", "1"},
			{"Passed Before/After Suite", "1", "0", "0"},
			{"Failed Before/After Suite", "0", "1", "0"},
			{"Total Before/After Suite", "1", "1", "0"},
			{"Not run Before/After Suite", "0", "0", "1"},
		}
		require.Len(t, m.Counts, len(expected))
		for i, row := range m.Counts {
			assert.Equal(t, expected[i], texts(row))
		}
	})

	t.Run("view titles", func(t *testing.T) {
		var titles []string
		for _, v := range m.Views() {
			titles = append(titles, v.Title)
		}
		assert.Equal(t, []string{
			"Failed tests (1)",
			"Test results graded on latest 2 results, worst to best",
			"Tests not run (1)",
			"Tests (3)",
			"All tests (including BeforeSuite,AfterSuite,....) (4)",
			"Test count history",
		}, titles)
	})
}

func TestBuildSetupTeardownRows(t *testing.T) {
	tests := map[string]xrayv1.Test{
		"MQ-1": newTest("MQ-1", "A.BeforeSuite"),
		"MQ-2": newTest("MQ-2", "A.AfterSuite"),
		"MQ-3": newTest("MQ-3", "A.case"),
	}
	e2, e1 := millis(2022, 1, 2), millis(2022, 1, 1)
	execs := []Execution{
		newExecution("MQ-20", e2, newRun("MQ-1", "FAILED", e2), newRun("MQ-3", "PASSED", e2)),
		newExecution("MQ-10", e1, newRun("MQ-1", "PASSED", e1), newRun("MQ-2", "PASSED", e1), newRun("MQ-3", "PASSED", e1)),
	}

	m, err := Build(tests, []string{"MQ-1", "MQ-2", "MQ-3"}, execs, nil, DefaultOptions())
	require.NoError(t, err)

	require.True(t, m.All[0][1].Failed())
	require.Same(t, Blank, m.All[1][1])

	views := []struct {
		name     string
		rows     [][]*Cell
		expected []string
	}{
		{name: "all", rows: m.All, expected: []string{"MQ-1", "MQ-2", "MQ-3"}},
		{name: "failed", rows: m.Failed, expected: nil},
		{name: "not run", rows: m.NotRun, expected: nil},
		{name: "tests", rows: m.Tests, expected: []string{"MQ-3"}},
		{name: "graded", rows: m.Graded, expected: []string{"MQ-3"}},
	}
	for _, tt := range views {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, keys(tt.rows))
		})
	}
	assert.NotContains(t, m.Scores, "MQ-1")
	assert.NotContains(t, m.Scores, "MQ-2")
}

func TestBuildColumns(t *testing.T) {
	tests, order, execs, sourceMap := fixture()
	opts := DefaultOptions()
	opts.Columns = 2

	m, err := Build(tests, order, execs, sourceMap, opts)
	require.NoError(t, err)
	assert.Len(t, m.Executions, 2)
	for _, row := range m.All {
		assert.Len(t, row, 4)
	}
	assert.Len(t, m.Counts[0], 3)
}

func TestBuildNoExecutions(t *testing.T) {
	tests, order, _, sourceMap := fixture()
	m, err := Build(tests, order, nil, sourceMap, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, m.All, 4)
	assert.Empty(t, m.Failed)
	assert.Empty(t, m.NotRun)
	assert.Len(t, m.Graded, 3)
}

func TestBuildErrors(t *testing.T) {
	tests, order, execs, sourceMap := fixture()

	opts := DefaultOptions()
	opts.WeightBase = 63
	_, err := Build(tests, order, execs, sourceMap, opts)
	assert.Error(t, err)

	_, err = Build(tests, append(order, "MQ-404"), execs, sourceMap, DefaultOptions())
	assert.Error(t, err)
}

func TestCountHistoryUnexpectedCell(t *testing.T) {
	rows := [][]*Cell{{NewHeaderCell("MQ-1", "", ""), NewPlainCell("3"), Blank}}
	_, err := countHistory(rows, []TestRow{{Key: "MQ-1"}}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedCell))
}

func TestScore(t *testing.T) {
	pass := NewRunCell("PASSED", "", "")
	fail := NewRunCell("FAILED", "", "")
	unknown := NewRunCell("EXECUTING", "", "")
	head := NewHeaderCell("MQ-1", "", "")

	tests := []struct {
		name     string
		row      []*Cell
		depth    int
		base     uint
		expected int64
	}{
		{name: "empty row", row: []*Cell{head}, depth: 14, base: 32, expected: 0},
		{name: "single pass", row: []*Cell{head, pass}, depth: 14, base: 4, expected: 16 + 2},
		{name: "single fail", row: []*Cell{head, fail}, depth: 14, base: 4, expected: 0},
		{name: "unknown status is not a failure", row: []*Cell{head, unknown}, depth: 14, base: 4, expected: 16 + 2},
		{name: "blank decrements the linear weight", row: []*Cell{head, Blank, pass}, depth: 14, base: 4, expected: 8 + 2},
		{name: "depth limits recency term", row: []*Cell{head, fail, pass}, depth: 1, base: 4, expected: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, score(tt.row, tt.depth, tt.base))
		})
	}

	t.Run("recent failures score worse", func(t *testing.T) {
		recent := []*Cell{head, fail, pass, pass, pass}
		old := []*Cell{head, pass, pass, pass, fail}
		assert.Less(t, score(recent, 14, 32), score(old, 14, 32))
	})
}
