// Package grading scores run histories. The grade of a test is its current pass streak: the
// number of PASSED runs counted back from the most recent run until the first run that did
// not pass. A suite directory is graded by its worst test.
package grading

import (
	"sort"

	log "github.com/sirupsen/logrus"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/runhistory"
	"github.com/openshift/testgrade/pkg/scraper"
	"github.com/openshift/testgrade/pkg/util"
)

// countPasses counts the leading PASSED statuses of a bucket and reports whether every
// status passed.
func countPasses(statuses []string) (int, bool) {
	for i, status := range statuses {
		if status != xrayv1.StatusPassed {
			return i, false
		}
	}
	return len(statuses), true
}

// Grade walks buckets newest first, adding the pass count of each. The first bucket that is
// not all passes contributes its leading passes and ends the walk.
func Grade(h runhistory.History) int {
	grade := 0
	for _, ts := range h.Timestamps(true) {
		passes, allPassed := countPasses(h[ts])
		grade += passes
		if !allPassed {
			break
		}
	}
	return grade
}

func GradeAll(histories map[string]runhistory.History) map[string]int {
	grades := make(map[string]int, len(histories))
	for k, h := range histories {
		grades[k] = Grade(h)
	}
	return grades
}

// SourceGrade is the grade of a suite directory: the minimum grade of its members.
type SourceGrade struct {
	Suite   string         `json:"suite"`
	Grade   int            `json:"grade"`
	Members map[string]int `json:"members"`
}

// SourceGrades groups definition grades by suite directory. Definitions without a source
// location are left out and returned as diagnostics.
func SourceGrades(grades map[string]int, sourceMap map[string]string) (map[string]SourceGrade, []string) {
	bySuite := map[string]SourceGrade{}
	var dropped []string

	for def, grade := range grades {
		src, ok := sourceMap[def]
		if !ok {
			dropped = append(dropped, def)
			continue
		}
		suite := scraper.SuiteName(src)
		sg, ok := bySuite[suite]
		if !ok {
			sg = SourceGrade{Suite: suite, Grade: grade, Members: map[string]int{}}
		}
		sg.Members[def] = grade
		if grade < sg.Grade {
			sg.Grade = grade
		}
		bySuite[suite] = sg
	}

	sort.Strings(dropped)
	for _, def := range dropped {
		log.Warnf("ignoring %q: no source location", def)
	}
	return bySuite, dropped
}

// Sorted orders suites worst first, ties broken by natural order of the suite name.
func Sorted(grades map[string]SourceGrade) []SourceGrade {
	sorted := make([]SourceGrade, 0, len(grades))
	for _, sg := range grades {
		sorted = append(sorted, sg)
	}
	less := util.NaturalLess()
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Grade != sorted[j].Grade {
			return sorted[i].Grade < sorted[j].Grade
		}
		return less(sorted[i].Suite, sorted[j].Suite)
	})
	return sorted
}
