// Package runhistory regroups flat lists of Xray test runs into per test histories.
//
// A History buckets run statuses by finish timestamp: several runs finishing at the same
// instant share one bucket, and a bucket is always treated as a unit.
package runhistory

import (
	"sort"

	"github.com/pkg/errors"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/scraper"
)

// ErrDefinitionMismatch is returned when runs of one test disagree on the test definition.
var ErrDefinitionMismatch = errors.New("test definition changed between runs")

// History maps a finish timestamp in epoch milliseconds to the statuses recorded at that
// instant, in insertion order.
type History map[int64][]string

func (h History) Add(ts int64, status string) {
	h[ts] = append(h[ts], status)
}

// Merge appends every bucket of other to h.
func (h History) Merge(other History) {
	for _, ts := range other.Timestamps(false) {
		h[ts] = append(h[ts], other[ts]...)
	}
}

// Timestamps returns the bucket timestamps, newest first when desc is set.
func (h History) Timestamps(desc bool) []int64 {
	ts := make([]int64, 0, len(h))
	for t := range h {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool {
		if desc {
			return ts[i] > ts[j]
		}
		return ts[i] < ts[j]
	})
	return ts
}

// Runs is the number of statuses across all buckets.
func (h History) Runs() int {
	n := 0
	for _, statuses := range h {
		n += len(statuses)
	}
	return n
}

// Index groups run histories by Jira key and by test definition.
type Index struct {
	ByKey        map[string]History `json:"ByJiraKey"`
	ByDefinition map[string]History `json:"ByDefinition"`
	// KeyToDefinition records the definition every Jira key was first seen with.
	KeyToDefinition map[string]string `json:"JiraKey2Definition"`
}

// BuildIndex groups runs. A run whose definition differs from an earlier run of the same test
// fails the whole index with ErrDefinitionMismatch.
func BuildIndex(runs []xrayv1.TestRun) (*Index, error) {
	idx := &Index{
		ByKey:           map[string]History{},
		ByDefinition:    map[string]History{},
		KeyToDefinition: map[string]string{},
	}

	for _, run := range runs {
		key := run.Key()
		def := run.Unstructured
		if known, ok := idx.KeyToDefinition[key]; ok {
			if known != def {
				return nil, errors.Wrapf(ErrDefinitionMismatch, "%s: %q != %q (run %s)", key, known, def, run.ID)
			}
		} else {
			idx.KeyToDefinition[key] = def
		}

		ts := int64(run.FinishedOn)
		status := run.Status.Name
		if _, ok := idx.ByKey[key]; !ok {
			idx.ByKey[key] = History{}
		}
		idx.ByKey[key].Add(ts, status)
		if _, ok := idx.ByDefinition[def]; !ok {
			idx.ByDefinition[def] = History{}
		}
		idx.ByDefinition[def].Add(ts, status)
	}
	return idx, nil
}

// BySource merges definition histories per suite directory. Definitions missing from the
// source map are skipped.
func (idx *Index) BySource(sourceMap map[string]string) map[string]History {
	bySrc := map[string]History{}
	defs := make([]string, 0, len(idx.ByDefinition))
	for def := range idx.ByDefinition {
		defs = append(defs, def)
	}
	sort.Strings(defs)

	for _, def := range defs {
		src, ok := sourceMap[def]
		if !ok {
			continue
		}
		suite := scraper.SuiteName(src)
		if _, ok := bySrc[suite]; !ok {
			bySrc[suite] = History{}
		}
		bySrc[suite].Merge(idx.ByDefinition[def])
	}
	return bySrc
}
