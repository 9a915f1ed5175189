// Package audit reports Xray tests whose bookkeeping is incomplete: missing definitions,
// active tests outside any test plan or test set, and To Do tests that already ran.
package audit

import (
	"fmt"
	"io"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/scraper"
	"github.com/openshift/testgrade/pkg/testsets"
)

const (
	StatusInUse = "In Use"
	StatusToDo  = "To Do"
)

var activeStatuses = sets.New[string](StatusInUse, StatusToDo)

type Finding struct {
	Key        string
	Status     string
	Summary    string
	Definition string
	ClassName  string
	// TestSet is the test set holding other tests of the same class, if any.
	TestSet   string
	TestPlans []string
	LatestRun xrayv1.Timestamp
}

type Report struct {
	NoDefinition []Finding
	NoTestPlan   []Finding
	// MisplacedTests are in no test set although a test set covers their class.
	MisplacedTests []Finding
	// Orphans are in no test set and no test set covers their class.
	Orphans      []Finding
	ToDoWithRuns []Finding
}

func refKeys(refs *xrayv1.RefList) []string {
	if refs == nil {
		return nil
	}
	keys := make([]string, 0, len(refs.Results))
	for _, r := range refs.Results {
		keys = append(keys, r.Jira.Key)
	}
	return keys
}

func newFinding(test xrayv1.Test) Finding {
	return Finding{
		Key:        test.Jira.Key,
		Status:     test.Jira.StatusName(),
		Summary:    test.Jira.Summary,
		Definition: test.Definition(),
		ClassName:  scraper.ClassName(test.Definition()),
		TestPlans:  refKeys(test.TestPlans),
	}
}

// Audit classifies tests. catalog supplies the class name to test set mapping used to
// suggest a test set for tests that are not in one.
func Audit(tests map[string]xrayv1.Test, catalog testsets.Catalog) Report {
	byClass := catalog.ClassNames()
	var r Report
	for _, key := range testsets.Keys(tests) {
		test := tests[key]
		f := newFinding(test)

		if test.Unstructured == nil {
			r.NoDefinition = append(r.NoDefinition, f)
		} else if activeStatuses.Has(f.Status) {
			if len(f.TestPlans) == 0 {
				r.NoTestPlan = append(r.NoTestPlan, f)
			}
			if len(refKeys(test.TestSets)) == 0 {
				if ts, ok := byClass[f.ClassName]; ok {
					f.TestSet = ts
					r.MisplacedTests = append(r.MisplacedTests, f)
				} else {
					r.Orphans = append(r.Orphans, f)
				}
			}
		}

		if f.Status == StatusToDo && test.TestRuns != nil && len(test.TestRuns.Results) > 0 {
			f.LatestRun = test.TestRuns.Results[0].FinishedOn
			r.ToDoWithRuns = append(r.ToDoWithRuns, f)
		}
	}
	return r
}

const rule = "============================================================="

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n%s\n%s\n", rule, title, rule)
}

// Write prints the report in sections, one block per test.
func (r Report) Write(w io.Writer) {
	section(w, "Tests with no definitions")
	for _, f := range r.NoDefinition {
		fmt.Fprintf(w, "%s:\n\tstatus: %s\n\tsummary: %s\n", f.Key, f.Status, f.Summary)
	}
	fmt.Fprintln(w)

	section(w, "Tests (In Use, To Do) not belonging to any testPlan")
	for _, f := range r.NoTestPlan {
		fmt.Fprintf(w, "%s:\n\tstatus: %s\n\tdefinition: %s\n", f.Key, f.Status, f.Definition)
	}

	section(w, "Tests (In Use, To Do) not belonging to any testset")
	for _, f := range r.MisplacedTests {
		fmt.Fprintf(w, "%s:\n\tstatus: %s\n\tclassname: %s\n\tshould be in testset: %s\n",
			f.Key, f.Status, f.ClassName, f.TestSet)
	}
	fmt.Fprintln(w, "------------------------")
	for _, f := range r.Orphans {
		fmt.Fprintf(w, "%s:\n\tstatus: %s\n\tclassname: %s\n\tfailed to find testset for classname:\n\tdef:%s\n",
			f.Key, f.Status, f.ClassName, f.Definition)
	}

	section(w, "Tests with status To Do and have run(s)")
	for _, f := range r.ToDoWithRuns {
		fmt.Fprintf(w, "%s:\n\tstatus: %s\n\tlatest run: %s\n\ttestPlan: [%s]\n\tdefinition: %s\n",
			f.Key, f.Status, f.LatestRun.Time().Format(time.ANSIC), strings.Join(f.TestPlans, ", "), f.Definition)
	}
}
