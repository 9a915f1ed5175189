package runhistory

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
)

func run(key, def string, ts int64, status string) xrayv1.TestRun {
	return xrayv1.TestRun{
		ID:           key + "-" + status,
		Unstructured: def,
		FinishedOn:   xrayv1.Timestamp(ts),
		Status:       xrayv1.RunStatus{Name: status},
		Test:         xrayv1.RunTest{Jira: xrayv1.JiraFields{Key: key}},
	}
}

func TestBuildIndex(t *testing.T) {
	runs := []xrayv1.TestRun{
		run("MQ-1", "Pool.Pool reclaim works", 100, "PASSED"),
		run("MQ-1", "Pool.Pool reclaim works", 200, "FAILED"),
		run("MQ-1", "Pool.Pool reclaim works", 200, "PASSED"),
		run("MQ-2", "IO.Volume io works", 100, "PASSED"),
	}

	idx, err := BuildIndex(runs)
	require.NoError(t, err)

	expectedByKey := map[string]History{
		"MQ-1": {100: {"PASSED"}, 200: {"FAILED", "PASSED"}},
		"MQ-2": {100: {"PASSED"}},
	}
	if diff := cmp.Diff(expectedByKey, idx.ByKey); diff != "" {
		t.Errorf("unexpected ByKey (-want +got):\n%s", diff)
	}
	assert.Equal(t, History{100: {"PASSED"}, 200: {"FAILED", "PASSED"}}, idx.ByDefinition["Pool.Pool reclaim works"])
	assert.Equal(t, map[string]string{"MQ-1": "Pool.Pool reclaim works", "MQ-2": "IO.Volume io works"}, idx.KeyToDefinition)
}

func TestBuildIndexDefinitionMismatch(t *testing.T) {
	runs := []xrayv1.TestRun{
		run("MQ-1", "Pool.Pool reclaim works", 100, "PASSED"),
		run("MQ-1", "Pool.Pool reclaim renamed", 200, "PASSED"),
	}
	idx, err := BuildIndex(runs)
	require.Error(t, err)
	assert.Nil(t, idx)
	assert.True(t, errors.Is(err, ErrDefinitionMismatch))
}

func TestHistoryTimestamps(t *testing.T) {
	h := History{}
	h.Add(300, "PASSED")
	h.Add(100, "FAILED")
	h.Add(200, "PASSED")
	h.Add(200, "TODO")

	assert.Equal(t, []int64{300, 200, 100}, h.Timestamps(true))
	assert.Equal(t, []int64{100, 200, 300}, h.Timestamps(false))
	assert.Equal(t, 4, h.Runs())
	assert.Equal(t, []string{"PASSED", "TODO"}, h[200])
}

func TestBySource(t *testing.T) {
	runs := []xrayv1.TestRun{
		run("MQ-1", "Pool.Pool reclaim works", 100, "PASSED"),
		run("MQ-2", "Pool.Pool create works", 100, "FAILED"),
		run("MQ-3", "Unknown.unknown", 100, "PASSED"),
	}
	idx, err := BuildIndex(runs)
	require.NoError(t, err)

	bySrc := idx.BySource(map[string]string{
		"Pool.Pool reclaim works": "/e2e/src/pool/reclaim_test.go",
		"Pool.Pool create works":  "/e2e/src/pool/pool_test.go",
	})
	require.Len(t, bySrc, 1)
	assert.ElementsMatch(t, []string{"PASSED", "FAILED"}, bySrc["pool"][100])
}
