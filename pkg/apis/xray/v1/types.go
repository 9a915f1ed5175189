package v1

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	StatusPassed = "PASSED"
	StatusFailed = "FAILED"
)

// JiraFields is the subset of Jira issue fields requested through the Xray jira(fields: [...]) selector.
type JiraFields struct {
	Key         string      `json:"key,omitempty"`
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	Status      *JiraStatus `json:"status,omitempty"`
}

type JiraStatus struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// StatusName returns the Jira workflow status of the issue, or "" when it was not requested.
func (f JiraFields) StatusName() string {
	if f.Status == nil {
		return ""
	}
	return f.Status.Name
}

// IssueRef is a reference to another Xray issue, as returned in nested result lists.
type IssueRef struct {
	IssueID string     `json:"issueId,omitempty"`
	Jira    JiraFields `json:"jira"`
}

// RefList is a nested paginated list (testSets, testPlans) capped server side.
type RefList struct {
	Results []IssueRef `json:"results"`
}

type RunRefList struct {
	Results []RunRef `json:"results"`
}

type RunRef struct {
	FinishedOn Timestamp `json:"finishedOn"`
}

// Test is an Xray test issue. Unstructured holds the test definition, which for our
// tests is the scraped identity string "ClassName.Suite Description".
type Test struct {
	IssueID      string      `json:"issueId"`
	Jira         JiraFields  `json:"jira"`
	Unstructured *string     `json:"unstructured"`
	TestSets     *RefList    `json:"testSets,omitempty"`
	TestPlans    *RefList    `json:"testPlans,omitempty"`
	TestRuns     *RunRefList `json:"testRuns,omitempty"`
}

// Definition returns the test definition or "" when the test has none.
func (t Test) Definition() string {
	if t.Unstructured == nil {
		return ""
	}
	return *t.Unstructured
}

type TestPlan struct {
	IssueID string     `json:"issueId"`
	Jira    JiraFields `json:"jira"`
}

type TestSet struct {
	IssueID string     `json:"issueId"`
	Jira    JiraFields `json:"jira"`
}

type TestExecution struct {
	IssueID          string     `json:"issueId"`
	Jira             JiraFields `json:"jira"`
	LastModified     string     `json:"lastModified,omitempty"`
	TestEnvironments []string   `json:"testEnvironments"`
}

type RunStatus struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type RunResult struct {
	Log string `json:"log"`
}

type RunTest struct {
	Jira JiraFields `json:"jira"`
}

// TestRun is one recorded execution of one test.
type TestRun struct {
	ID           string      `json:"id"`
	Unstructured string      `json:"unstructured"`
	FinishedOn   Timestamp   `json:"finishedOn"`
	Status       RunStatus   `json:"status"`
	Test         RunTest     `json:"test"`
	Results      []RunResult `json:"results"`
}

// Key returns the Jira key of the test this run belongs to.
func (r TestRun) Key() string {
	return r.Test.Jira.Key
}

// Log returns the first result log of the run, the one displayed in reports.
func (r TestRun) Log() string {
	if len(r.Results) == 0 {
		return ""
	}
	return r.Results[0].Log
}

func (r TestRun) Failed() bool {
	return r.Status.Name == StatusFailed
}

// Timestamp is a point in time in milliseconds since the epoch. Xray reports finish times
// either as epoch milliseconds (number or numeric string) or as ISO-8601 strings; both
// are normalized on decode.
type Timestamp int64

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*t = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		ts, err := ParseTimestamp(str)
		if err != nil {
			return err
		}
		*t = ts
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid timestamp %s", s)
	}
	*t = Timestamp(f)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(t), 10)), nil
}

func (t Timestamp) Time() time.Time {
	return time.UnixMilli(int64(t)).UTC()
}

func (t Timestamp) IsZero() bool {
	return t == 0
}

// ParseTimestamp accepts epoch milliseconds or an ISO-8601 date time.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Timestamp(ms), nil
	}
	for _, layout := range timestampLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return Timestamp(tm.UnixMilli()), nil
		}
	}
	return 0, errors.Errorf("unsupported timestamp format %q", s)
}
