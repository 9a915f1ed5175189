package planloader

import (
	"context"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
)

type fakeSource struct {
	tests     map[string]xrayv1.Test
	execs     map[string]xrayv1.TestExecution
	runs      map[string][]xrayv1.TestRun
	runsErr   error
	resolves  int
	runCalls  []string
	resolveOK bool
}

func (f *fakeSource) ResolveTestPlan(_ context.Context, jiraKey string) (string, error) {
	f.resolves++
	if !f.resolveOK {
		return "", errors.Errorf("test plan %s not found", jiraKey)
	}
	return "plan-id", nil
}

func (f *fakeSource) GetTestsInTestPlan(_ context.Context, _ string) (map[string]xrayv1.Test, error) {
	return f.tests, nil
}

func (f *fakeSource) GetTestExecutionsInTestPlan(_ context.Context, _ string) (map[string]xrayv1.TestExecution, error) {
	return f.execs, nil
}

func (f *fakeSource) GetTestExecutionRuns(_ context.Context, issueID string) ([]xrayv1.TestRun, error) {
	f.runCalls = append(f.runCalls, issueID)
	if f.runsErr != nil {
		return nil, f.runsErr
	}
	return f.runs[issueID], nil
}

func newFakeSource() *fakeSource {
	def := "A.b c"
	return &fakeSource{
		resolveOK: true,
		tests: map[string]xrayv1.Test{
			"MQ-1": {IssueID: "1", Jira: xrayv1.JiraFields{Key: "MQ-1"}, Unstructured: &def},
		},
		execs: map[string]xrayv1.TestExecution{
			"MQ-9":  {IssueID: "9", Jira: xrayv1.JiraFields{Key: "MQ-9"}},
			"MQ-10": {IssueID: "10", Jira: xrayv1.JiraFields{Key: "MQ-10"}, TestEnvironments: []string{"k8s"}},
		},
		runs: map[string][]xrayv1.TestRun{
			"9": {{ID: "r1", Status: xrayv1.RunStatus{Name: "PASSED"}, Test: xrayv1.RunTest{Jira: xrayv1.JiraFields{Key: "MQ-1"}}, FinishedOn: 1000}},
		},
	}
}

func load(t *testing.T, source Source, cache Cache, refresh bool) {
	t.Helper()
	for _, l := range New(context.Background(), source, cache, "MQ-100", refresh, 0) {
		l.Load()
		require.Empty(t, l.Errors(), l.Name())
	}
}

func TestLoad(t *testing.T) {
	source := newFakeSource()
	cache := Cache{Dir: t.TempDir()}

	load(t, source, cache, false)
	assert.Equal(t, 1, source.resolves)
	assert.Equal(t, []string{"9", "10"}, source.runCalls)

	tests, err := cache.Tests("MQ-100")
	require.NoError(t, err)
	assert.Equal(t, "A.b c", tests["MQ-1"].Definition())

	execs, err := cache.Executions("MQ-100")
	require.NoError(t, err)
	assert.Len(t, execs, 2)
	assert.Equal(t, []string{"k8s"}, execs["MQ-10"].TestEnvironments)

	runs, err := cache.Runs(execs)
	require.NoError(t, err)
	require.Len(t, runs["MQ-9"], 1)
	assert.Equal(t, xrayv1.Timestamp(1000), runs["MQ-9"][0].FinishedOn)
	assert.Empty(t, runs["MQ-10"])
	_, ok := runs["MQ-10"]
	assert.True(t, ok, "an execution without runs still gets a cache file")

	t.Run("cached executions are skipped", func(t *testing.T) {
		source.runCalls = nil
		load(t, source, cache, false)
		assert.Empty(t, source.runCalls)
	})

	t.Run("refresh collects again", func(t *testing.T) {
		source.runCalls = nil
		load(t, source, cache, true)
		assert.Equal(t, []string{"9", "10"}, source.runCalls)
	})
}

func TestLoadMergesTests(t *testing.T) {
	source := newFakeSource()
	cache := Cache{Dir: t.TempDir()}
	load(t, source, cache, false)

	def := "A.b d"
	source.tests = map[string]xrayv1.Test{"MQ-2": {IssueID: "2", Jira: xrayv1.JiraFields{Key: "MQ-2"}, Unstructured: &def}}
	load(t, source, cache, false)

	tests, err := cache.Tests("MQ-100")
	require.NoError(t, err)
	assert.Len(t, tests, 2)
}

func TestLoadErrors(t *testing.T) {
	t.Run("unknown plan", func(t *testing.T) {
		source := newFakeSource()
		source.resolveOK = false
		loaders := New(context.Background(), source, Cache{Dir: t.TempDir()}, "MQ-404", false, 0)
		loaders[0].Load()
		assert.Len(t, loaders[0].Errors(), 1)
	})

	t.Run("run collection stops at the first failure", func(t *testing.T) {
		source := newFakeSource()
		source.runsErr = errors.New("request failed 429, Too Many Requests")
		loaders := New(context.Background(), source, Cache{Dir: t.TempDir()}, "MQ-100", false, 0)
		for _, l := range loaders {
			l.Load()
		}
		assert.Empty(t, loaders[1].Errors())
		assert.Len(t, loaders[2].Errors(), 1)
		assert.Equal(t, []string{"9"}, source.runCalls)
	})
}

func TestCacheMissing(t *testing.T) {
	cache := Cache{Dir: t.TempDir()}
	tests, err := cache.Tests("MQ-1")
	require.NoError(t, err)
	assert.Empty(t, tests)

	require.NoError(t, os.WriteFile(cache.ExecutionsPath("MQ-1"), []byte("{"), 0o644))
	_, err = cache.Executions("MQ-1")
	assert.Error(t, err)
}
