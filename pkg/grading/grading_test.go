package grading

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshift/testgrade/pkg/runhistory"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		name     string
		history  runhistory.History
		expected int
	}{
		{
			name:     "empty history",
			history:  runhistory.History{},
			expected: 0,
		},
		{
			name:     "all passed",
			history:  runhistory.History{100: {"PASSED"}, 200: {"PASSED", "PASSED"}, 300: {"PASSED"}},
			expected: 4,
		},
		{
			name:     "most recent failed",
			history:  runhistory.History{100: {"PASSED"}, 200: {"FAILED"}},
			expected: 0,
		},
		{
			name:     "streak stops at failure",
			history:  runhistory.History{100: {"PASSED"}, 200: {"FAILED"}, 300: {"PASSED"}, 400: {"PASSED"}},
			expected: 2,
		},
		{
			name:     "partial bucket counts leading passes",
			history:  runhistory.History{100: {"PASSED"}, 200: {"PASSED", "PASSED", "FAILED", "PASSED"}},
			expected: 2,
		},
		{
			name:     "non pass status ends streak",
			history:  runhistory.History{100: {"PASSED"}, 200: {"TODO"}, 300: {"PASSED"}},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Grade(tt.history))
		})
	}
}

func TestGradeProperties(t *testing.T) {
	statuses := []string{"PASSED", "PASSED", "PASSED", "FAILED", "EXECUTING"}
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		h := runhistory.History{}
		allPassed := runhistory.History{}
		buckets := r.Intn(8)
		for b := 0; b < buckets; b++ {
			ts := int64(r.Intn(20))
			runs := 1 + r.Intn(3)
			for n := 0; n < runs; n++ {
				h.Add(ts, statuses[r.Intn(len(statuses))])
				allPassed.Add(ts, "PASSED")
			}
		}

		grade := Grade(h)
		assert.LessOrEqual(t, grade, h.Runs())
		assert.Equal(t, allPassed.Runs(), Grade(allPassed))

		if ts := h.Timestamps(true); len(ts) > 0 {
			passes, all := countPasses(h[ts[0]])
			if !all {
				assert.Equal(t, passes, grade)
			}
		}
	}
}

func TestSourceGrades(t *testing.T) {
	grades := map[string]int{
		"Pool.Pool reclaim works": 5,
		"Pool.Pool create works":  2,
		"IO.Volume io works":      7,
		"Gone.Removed test":       1,
	}
	sourceMap := map[string]string{
		"Pool.Pool reclaim works": "/e2e/src/pool/reclaim_test.go",
		"Pool.Pool create works":  "/e2e/src/pool/pool_test.go",
		"IO.Volume io works":      "/e2e/src/basic_volume_io/io_test.go",
		"Unused.Never ran":        "/e2e/src/unused/unused_test.go",
	}

	bySuite, dropped := SourceGrades(grades, sourceMap)
	assert.Equal(t, []string{"Gone.Removed test"}, dropped)
	require.Len(t, bySuite, 2)
	assert.Equal(t, 2, bySuite["pool"].Grade)
	assert.Equal(t, map[string]int{"Pool.Pool reclaim works": 5, "Pool.Pool create works": 2}, bySuite["pool"].Members)
	assert.Equal(t, 7, bySuite["basic_volume_io"].Grade)
	assert.NotContains(t, bySuite, "unused")
}

func TestSorted(t *testing.T) {
	sorted := Sorted(map[string]SourceGrade{
		"pool10": {Suite: "pool10", Grade: 3},
		"pool2":  {Suite: "pool2", Grade: 3},
		"io":     {Suite: "io", Grade: 9},
		"csi":    {Suite: "csi", Grade: 0},
	})
	var suites []string
	for _, sg := range sorted {
		suites = append(suites, sg.Suite)
	}
	assert.Equal(t, []string{"csi", "pool2", "pool10", "io"}, suites)
}

func TestSummary(t *testing.T) {
	s, err := Summary(map[string]int{"a": 1, "b": 2, "c": 3, "d": 10})
	require.NoError(t, err)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 10.0, s.Max)
	assert.Equal(t, 4.0, s.Mean)
	assert.Equal(t, 2.5, s.Median)

	empty, err := Summary(nil)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, empty)
}
