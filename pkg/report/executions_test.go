package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
)

func TestOrderTests(t *testing.T) {
	tests := map[string]xrayv1.Test{
		"MQ-1":  newTest("MQ-1", "A.x"),
		"MQ-2":  newTest("MQ-2", "B.y"),
		"MQ-3":  newTest("MQ-3", "A.z"),
		"MQ-10": newTest("MQ-10", "B.w"),
		"MQ-4":  newTest("MQ-4", "C.v"),
	}
	assert.Equal(t, []string{"MQ-1", "MQ-3", "MQ-2", "MQ-10", "MQ-4"}, OrderTests(tests))
}

func TestNormalizeDefinitions(t *testing.T) {
	tests := map[string]xrayv1.Test{
		"MQ-1": {Jira: xrayv1.JiraFields{Key: "MQ-1"}},
		"MQ-2": newTest("MQ-2", "A.x"),
	}
	NormalizeDefinitions(tests)
	assert.Equal(t, UnknownDefinition, tests["MQ-1"].Definition())
	assert.Equal(t, "A.x", tests["MQ-2"].Definition())
}

func TestPrepareExecutions(t *testing.T) {
	execs := map[string]xrayv1.TestExecution{
		"MQ-9":  {IssueID: "9", Jira: xrayv1.JiraFields{Key: "MQ-9", Summary: "nine"}},
		"MQ-10": {IssueID: "10", Jira: xrayv1.JiraFields{Key: "MQ-10", Summary: "ten"}, TestEnvironments: []string{"b", "a"}},
		"MQ-11": {IssueID: "11", Jira: xrayv1.JiraFields{Key: "MQ-11"}},
	}
	runs := map[string][]xrayv1.TestRun{
		"MQ-10": {newRun("MQ-1", "PASSED", 2000), newRun("MQ-2", "FAILED", 1000), newRun("MQ-99", "PASSED", 500)},
		"MQ-9":  {newRun("MQ-1", "PASSED", 3000), newRun("MQ-2", "PASSED", 0)},
		"MQ-11": {newRun("MQ-99", "PASSED", 100)},
	}

	prepared := PrepareExecutions(execs, runs, []string{"MQ-1", "MQ-2"}, []string{"k8s"})
	require.Len(t, prepared, 2)

	assert.Equal(t, "MQ-10", prepared[0].Key)
	assert.Equal(t, int64(1000), prepared[0].Timestamp)
	assert.Equal(t, []string{"a", "b"}, prepared[0].Environments)
	assert.Equal(t, "ten", prepared[0].Summary)
	assert.Len(t, prepared[0].Runs, 3)

	assert.Equal(t, "MQ-9", prepared[1].Key)
	assert.Equal(t, int64(3000), prepared[1].Timestamp)
	assert.Equal(t, []string{"k8s"}, prepared[1].Environments)

	// the input is not modified
	assert.Equal(t, []string{"b", "a"}, execs["MQ-10"].TestEnvironments)
}

func TestPrepareExecutionsWithoutEnvironments(t *testing.T) {
	execs := map[string]xrayv1.TestExecution{
		"MQ-9": {IssueID: "9", Jira: xrayv1.JiraFields{Key: "MQ-9"}},
	}
	runs := map[string][]xrayv1.TestRun{
		"MQ-9": {newRun("MQ-1", "PASSED", 3000)},
	}

	prepared := PrepareExecutions(execs, runs, []string{"MQ-1"}, nil)
	require.Len(t, prepared, 1)
	assert.Equal(t, []string{NoEnvironment}, prepared[0].Environments)
	assert.Equal(t, [][]string{{NoEnvironment}}, EnvironmentCombinations(prepared))
}

func TestEnvironmentCombinations(t *testing.T) {
	execs := []Execution{
		{Key: "MQ-4", Environments: []string{"a", "b"}},
		{Key: "MQ-3", Environments: []string{"k8s"}},
		{Key: "MQ-2", Environments: []string{"a", "b"}},
		{Key: "MQ-1", Environments: []string{"a"}},
	}
	combis := EnvironmentCombinations(execs)
	if diff := cmp.Diff([][]string{{"a", "b"}, {"k8s"}, {"a"}}, combis); diff != "" {
		t.Errorf("unexpected combinations (-want +got):\n%s", diff)
	}

	var kept []string
	for _, e := range WithEnvironments(execs, []string{"a", "b"}) {
		kept = append(kept, e.Key)
	}
	assert.Equal(t, []string{"MQ-4", "MQ-2"}, kept)
	assert.Empty(t, WithEnvironments(execs, []string{"b"}))
}

func TestLinkBuilder(t *testing.T) {
	l := LinkBuilder{}
	assert.Equal(t, "https://mayadata.atlassian.net/browse/MQ-7", l.IssueLink("MQ-7"))
	assert.Equal(t,
		"https://mayadata.atlassian.net/plugins/servlet/ac/com.xpandit.plugins.xray/execution-page?ac.testExecIssueKey=MQ-8&ac.testIssueKey=MQ-7",
		l.RunLink("MQ-8", "MQ-7"))

	l = LinkBuilder{BaseURL: "https://jira.example.com/"}
	assert.Equal(t, "https://jira.example.com/browse/MQ-7", l.IssueLink("MQ-7"))
}

func TestNewRunCell(t *testing.T) {
	c := NewRunCell("PASSED", "l", "t")
	assert.Equal(t, "P", c.Text)
	assert.True(t, c.Passing())
	assert.False(t, c.Failed())

	c = NewRunCell("FAILED", "", "")
	assert.Equal(t, "F", c.Text)
	assert.True(t, c.Failed())
	assert.False(t, c.Passing())

	c = NewRunCell("", "", "")
	assert.Equal(t, StatusUnknown, c.Status)
	assert.True(t, c.Passing())

	assert.False(t, Blank.IsRun())
	assert.False(t, Blank.Passing())
	assert.Equal(t, "run", KindRun.String())
}
