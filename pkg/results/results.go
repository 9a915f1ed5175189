// Package results lists, summarises and grades the test runs of a test plan, grouped by the
// suite directory of each test.
package results

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/cache/jsonfile"
	"github.com/openshift/testgrade/pkg/scraper"
	"github.com/openshift/testgrade/pkg/util"
)

const unknownFile = "?"

// Run is a test run annotated with the location of its test definition.
type Run struct {
	xrayv1.TestRun
	Suite string `json:"e2e_name"`
	File  string `json:"e2e_file"`
}

// Data holds the runs of a test plan by test key and an index of test keys by suite.
type Data struct {
	Results    map[string][]Run                `json:"results"`
	Index      map[string][]string             `json:"index"`
	Tests      map[string]xrayv1.Test          `json:"tests"`
	Executions map[string]xrayv1.TestExecution `json:"executions"`
}

// NewData annotates runs with their suite and file. Runs of definitions missing from
// sourceMap are indexed under their definition.
func NewData(tests map[string]xrayv1.Test, execs map[string]xrayv1.TestExecution, runs []xrayv1.TestRun, sourceMap map[string]string) *Data {
	d := &Data{
		Results:    map[string][]Run{},
		Index:      map[string][]string{},
		Tests:      tests,
		Executions: execs,
	}

	indexed := map[string]map[string]bool{}
	for _, r := range runs {
		run := Run{TestRun: r, Suite: r.Unstructured, File: unknownFile}
		if src, ok := sourceMap[r.Unstructured]; ok {
			run.Suite = scraper.SuiteName(src)
			run.File = scraper.FileName(src)
		}

		key := r.Key()
		d.Results[key] = append(d.Results[key], run)
		if indexed[run.Suite] == nil {
			indexed[run.Suite] = map[string]bool{}
		}
		indexed[run.Suite][key] = true
	}

	for suite, keys := range indexed {
		for k := range keys {
			d.Index[suite] = append(d.Index[suite], k)
		}
		sort.Strings(d.Index[suite])
	}
	return d
}

// Save writes the data to path keyed by the test plan.
func (d *Data) Save(path, planKey string) error {
	return jsonfile.Save(path, map[string]*Data{planKey: d})
}

// LoadData reads the data of a test plan written by Save.
func LoadData(path, planKey string) (*Data, error) {
	byPlan := map[string]*Data{}
	found, err := jsonfile.Load(path, &byPlan)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("results file %s does not exist", path)
	}
	d, ok := byPlan[planKey]
	if !ok || d == nil {
		return nil, errors.Errorf("results file %s has no results for %s", path, planKey)
	}
	return d, nil
}

// Groups merges index entries on the text before the first ".", so runs of definitions
// without a source location group by classname.
func (d *Data) Groups() map[string][]string {
	groups := map[string][]string{}
	for name, keys := range d.Index {
		group := strings.SplitN(name, ".", 2)[0]
		groups[group] = append(groups[group], keys...)
	}
	return groups
}

// Filter selects runs.
type Filter struct {
	// Keys and the tests of Suites are kept; everything is kept when both are empty.
	Keys   []string
	Suites []string
	// Cutoff drops runs finished before it, in epoch milliseconds.
	Cutoff int64
	// Status keeps runs by status, the zero value keeps all.
	Status util.StatusFilter
}

// Select applies the filter to the results. Tests left without runs are dropped.
func (d *Data) Select(f Filter) (map[string][]Run, error) {
	groups := d.Groups()

	keep := map[string]bool{}
	for _, k := range f.Keys {
		keep[k] = true
	}
	for _, s := range f.Suites {
		keys, ok := groups[s]
		if !ok {
			return nil, errors.Errorf("unknown e2e test suite %q", s)
		}
		for _, k := range keys {
			keep[k] = true
		}
	}

	selected := map[string][]Run{}
	for key, runs := range d.Results {
		if len(keep) > 0 && !keep[key] {
			continue
		}
		var kept []Run
		for _, r := range runs {
			if int64(r.FinishedOn) >= f.Cutoff && f.Status.Match(r.Status.Name) {
				kept = append(kept, r)
			}
		}
		if len(kept) > 0 {
			selected[key] = kept
		}
	}
	return selected, nil
}

func mapKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// groupNames returns the group names in natural order.
func groupNames(groups map[string][]string) []string {
	names := mapKeys(groups)
	util.NaturalSort(names)
	return names
}

func testRuns(runs []Run) []xrayv1.TestRun {
	out := make([]xrayv1.TestRun, len(runs))
	for i, r := range runs {
		out[i] = r.TestRun
	}
	return out
}
