package xrayclient

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
)

// ErrNotFound is returned when a Jira key cannot be resolved to an Xray issue.
var ErrNotFound = errors.New("not found")

func (c *Client) pageVariables(extra map[string]interface{}) map[string]interface{} {
	vars := map[string]interface{}{
		"limit": c.PageSize,
		"start": 0,
	}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

func (c *Client) projectVariables() map[string]interface{} {
	return c.pageVariables(map[string]interface{}{"jql": fmt.Sprintf("project = %s", c.Project)})
}

func keyed[T any](items []T, key func(T) string) map[string]T {
	m := make(map[string]T, len(items))
	for _, item := range items {
		m[key(item)] = item
	}
	return m
}

func testKey(t xrayv1.Test) string { return t.Jira.Key }

// ListTests returns every test of the project keyed by Jira key. Test sets, test plans and
// sample test runs are capped at 10 per test.
func (c *Client) ListTests(ctx context.Context) (map[string]xrayv1.Test, error) {
	tests, err := collectAs[xrayv1.Test](ctx, c, Query{Text: listTestsQuery, Variables: c.projectVariables()})
	if err != nil {
		return nil, err
	}
	return keyed(tests, testKey), nil
}

// GetTest fetches a single test by issue id.
func (c *Client) GetTest(ctx context.Context, issueID string) (*xrayv1.Test, error) {
	var data struct {
		GetTest *xrayv1.Test `json:"getTest"`
	}
	err := c.Query(ctx, Query{Text: getTestQuery, Variables: map[string]interface{}{"issueId": issueID}}, &data)
	if err != nil {
		return nil, err
	}
	if data.GetTest == nil {
		return nil, errors.Wrapf(ErrNotFound, "test %s", issueID)
	}
	return data.GetTest, nil
}

func (c *Client) ListTestPlans(ctx context.Context) (map[string]xrayv1.TestPlan, error) {
	plans, err := collectAs[xrayv1.TestPlan](ctx, c, Query{Text: listTestPlansQuery, Variables: c.projectVariables()})
	if err != nil {
		return nil, err
	}
	return keyed(plans, func(p xrayv1.TestPlan) string { return p.Jira.Key }), nil
}

func (c *Client) GetTestsInTestPlan(ctx context.Context, issueID string) (map[string]xrayv1.Test, error) {
	tests, err := collectAs[xrayv1.Test](ctx, c, Query{
		Text:      getTestsInTestPlanQuery,
		Variables: c.pageVariables(map[string]interface{}{"issueId": issueID}),
	})
	if err != nil {
		return nil, err
	}
	return keyed(tests, testKey), nil
}

func (c *Client) GetTestExecutionsInTestPlan(ctx context.Context, issueID string) (map[string]xrayv1.TestExecution, error) {
	execs, err := collectAs[xrayv1.TestExecution](ctx, c, Query{
		Text:      getTestExecutionsInTestPlanQuery,
		Variables: c.pageVariables(map[string]interface{}{"issueId": issueID}),
	})
	if err != nil {
		return nil, err
	}
	return keyed(execs, func(e xrayv1.TestExecution) string { return e.Jira.Key }), nil
}

func (c *Client) ListTestSets(ctx context.Context) (map[string]xrayv1.TestSet, error) {
	sets, err := collectAs[xrayv1.TestSet](ctx, c, Query{Text: listTestSetsQuery, Variables: c.projectVariables()})
	if err != nil {
		return nil, err
	}
	return keyed(sets, func(s xrayv1.TestSet) string { return s.Jira.Key }), nil
}

func (c *Client) GetTestsInTestSet(ctx context.Context, issueID string) (map[string]xrayv1.Test, error) {
	tests, err := collectAs[xrayv1.Test](ctx, c, Query{
		Text:      getTestsInTestSetQuery,
		Variables: c.pageVariables(map[string]interface{}{"issueId": issueID}),
	})
	if err != nil {
		return nil, err
	}
	return keyed(tests, testKey), nil
}

// GetTestsInAllTestSets returns test set key -> test key -> test.
func (c *Client) GetTestsInAllTestSets(ctx context.Context) (map[string]map[string]xrayv1.Test, error) {
	sets, err := c.ListTestSets(ctx)
	if err != nil {
		return nil, err
	}
	all := make(map[string]map[string]xrayv1.Test, len(sets))
	for key, set := range sets {
		tests, err := c.GetTestsInTestSet(ctx, set.IssueID)
		if err != nil {
			return nil, errors.WithMessagef(err, "test set %s", key)
		}
		log.Debugf("test set %s has %d tests", key, len(tests))
		all[key] = tests
	}
	return all, nil
}

func (c *Client) ListTestExecutions(ctx context.Context) (map[string]xrayv1.TestExecution, error) {
	execs, err := collectAs[xrayv1.TestExecution](ctx, c, Query{Text: listTestExecutionsQuery, Variables: c.projectVariables()})
	if err != nil {
		return nil, err
	}
	return keyed(execs, func(e xrayv1.TestExecution) string { return e.Jira.Key }), nil
}

// GetTestExecutionRuns returns the test runs recorded in a test execution.
func (c *Client) GetTestExecutionRuns(ctx context.Context, issueID string) ([]xrayv1.TestRun, error) {
	return collectAs[xrayv1.TestRun](ctx, c, Query{
		Text:      getTestExecutionRunsQuery,
		Variables: c.pageVariables(map[string]interface{}{"issueId": issueID}),
	})
}

// GetTestRuns returns every run of one test across all executions.
func (c *Client) GetTestRuns(ctx context.Context, issueID string) ([]xrayv1.TestRun, error) {
	return collectAs[xrayv1.TestRun](ctx, c, Query{
		Text:      getTestRunsQuery,
		Variables: c.pageVariables(map[string]interface{}{"issueId": issueID}),
	})
}

func (c *Client) GetTestRunResult(ctx context.Context, id string) ([]xrayv1.RunResult, error) {
	var data struct {
		GetTestRunByID *struct {
			Results []xrayv1.RunResult `json:"results"`
		} `json:"getTestRunById"`
	}
	err := c.Query(ctx, Query{Text: getTestRunResultQuery, Variables: map[string]interface{}{"id": id}}, &data)
	if err != nil {
		return nil, err
	}
	if data.GetTestRunByID == nil {
		return nil, errors.Wrapf(ErrNotFound, "test run %s", id)
	}
	return data.GetTestRunByID.Results, nil
}

func (c *Client) ResolveTestPlan(ctx context.Context, jiraKey string) (string, error) {
	plans, err := c.ListTestPlans(ctx)
	if err != nil {
		return "", err
	}
	plan, ok := plans[jiraKey]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "test plan %s", jiraKey)
	}
	return plan.IssueID, nil
}

func (c *Client) ResolveTestSet(ctx context.Context, jiraKey string) (string, error) {
	sets, err := c.ListTestSets(ctx)
	if err != nil {
		return "", err
	}
	set, ok := sets[jiraKey]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "test set %s", jiraKey)
	}
	return set.IssueID, nil
}

func (c *Client) ResolveTestExecution(ctx context.Context, jiraKey string) (string, error) {
	execs, err := c.ListTestExecutions(ctx)
	if err != nil {
		return "", err
	}
	exec, ok := execs[jiraKey]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "test execution %s", jiraKey)
	}
	return exec.IssueID, nil
}

// ResolveTest looks the key up in the full test list of the project.
func (c *Client) ResolveTest(ctx context.Context, jiraKey string) (string, error) {
	tests, err := c.ListTests(ctx)
	if err != nil {
		return "", err
	}
	test, ok := tests[jiraKey]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "test %s", jiraKey)
	}
	return test.IssueID, nil
}
