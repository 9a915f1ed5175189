package runhistory

import (
	"sort"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
)

// StatusRun is a stretch of consecutive runs with the same status.
type StatusRun struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// SortByFinish returns a copy of runs ordered by finish time, oldest first.
func SortByFinish(runs []xrayv1.TestRun) []xrayv1.TestRun {
	sorted := make([]xrayv1.TestRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FinishedOn < sorted[j].FinishedOn
	})
	return sorted
}

// Latest returns one run per finish time, newest first. When runs share a finish time the
// last one wins.
func Latest(runs []xrayv1.TestRun) []xrayv1.TestRun {
	byTime := map[xrayv1.Timestamp]xrayv1.TestRun{}
	for _, r := range runs {
		byTime[r.FinishedOn] = r
	}
	latest := make([]xrayv1.TestRun, 0, len(byTime))
	for _, r := range byTime {
		latest = append(latest, r)
	}
	sort.Slice(latest, func(i, j int) bool {
		return latest[i].FinishedOn > latest[j].FinishedOn
	})
	return latest
}

// Summarise run length encodes the statuses of runs, oldest first.
func Summarise(runs []xrayv1.TestRun) []StatusRun {
	var summary []StatusRun
	for _, r := range SortByFinish(runs) {
		status := r.Status.Name
		if n := len(summary); n > 0 && summary[n-1].Status == status {
			summary[n-1].Count++
			continue
		}
		summary = append(summary, StatusRun{Status: status, Count: 1})
	}
	return summary
}

// NewFailure returns the most recent run when it failed and the run before it did not.
func NewFailure(runs []xrayv1.TestRun) (xrayv1.TestRun, bool) {
	latest := Latest(runs)
	if len(latest) == 0 || !latest[0].Failed() {
		return xrayv1.TestRun{}, false
	}
	if len(latest) > 1 && latest[1].Failed() {
		return xrayv1.TestRun{}, false
	}
	return latest[0], true
}

// FilterSince drops runs that finished before cutoff, in epoch milliseconds.
func FilterSince(runs []xrayv1.TestRun, cutoff int64) []xrayv1.TestRun {
	var kept []xrayv1.TestRun
	for _, r := range runs {
		if int64(r.FinishedOn) >= cutoff {
			kept = append(kept, r)
		}
	}
	return kept
}

// GroupByKey groups runs by the Jira key of their test, keeping input order.
func GroupByKey(runs []xrayv1.TestRun) map[string][]xrayv1.TestRun {
	grouped := map[string][]xrayv1.TestRun{}
	for _, r := range runs {
		grouped[r.Key()] = append(grouped[r.Key()], r)
	}
	return grouped
}
