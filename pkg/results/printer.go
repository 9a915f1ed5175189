package results

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/runhistory"
	"github.com/openshift/testgrade/pkg/util"
)

const timeLayout = "2006-01-02 15:04:05"

// Options selects what is printed for each test.
type Options struct {
	Summarise bool
	Print     bool
	NewFails  bool
	// Grade prints the worst test of each suite instead of per test output.
	Grade bool
	// GradePass hides suites whose worst test has fewer passes than this.
	GradePass int
	// OnlyFails restricts output to tests that failed.
	OnlyFails bool
	Verbose   bool
	Dump      bool
	// Ungroup prints tests in key order instead of grouping them by suite.
	Ungroup bool
}

func (o Options) Validate() error {
	if o.Grade && o.OnlyFails {
		return errors.New("grading is incompatible with only printing failures")
	}
	return nil
}

type Printer struct {
	w    io.Writer
	opts Options

	passed func(a ...interface{}) string
	failed func(a ...interface{}) string
	suite  func(a ...interface{}) string
}

func NewPrinter(w io.Writer, opts Options) *Printer {
	return &Printer{
		w:      w,
		opts:   opts,
		passed: color.New(color.FgGreen).SprintFunc(),
		failed: color.New(color.FgRed, color.Bold).SprintFunc(),
		suite:  color.New(color.FgCyan, color.Bold).SprintFunc(),
	}
}

func (p *Printer) status(s string) string {
	switch s {
	case xrayv1.StatusPassed:
		return p.passed(s)
	case xrayv1.StatusFailed:
		return p.failed(s)
	}
	return s
}

// Print writes the selected output for every test in results.
func (p *Printer) Print(d *Data, results map[string][]Run) error {
	if err := p.opts.Validate(); err != nil {
		return err
	}

	if p.opts.Ungroup {
		keys := mapKeys(results)
		sort.Strings(keys)
		for _, key := range keys {
			sb := &strings.Builder{}
			p.test(sb, key, results[key])
			fmt.Fprintln(p.w, sb.String())
		}
		return nil
	}

	groups := d.Groups()
	for _, name := range groupNames(groups) {
		var keys []string
		for _, k := range groups[name] {
			if _, ok := results[k]; ok {
				keys = append(keys, k)
			}
		}
		if len(keys) == 0 {
			continue
		}
		util.SortJiraKeys(keys)

		if p.opts.Grade {
			p.grade(name, keys, results)
			continue
		}

		sb := &strings.Builder{}
		for _, key := range keys {
			p.test(sb, key, results[key])
		}
		if sb.Len() > 0 {
			fmt.Fprintf(p.w, "%s:\n%s\n", p.suite(name), sb.String())
		}
	}
	return nil
}

func (p *Printer) test(sb *strings.Builder, key string, runs []Run) {
	if p.opts.Summarise {
		p.summarise(sb, key, runs)
	}
	if p.opts.Print {
		p.print(sb, key, runs)
	}
	if p.opts.NewFails {
		p.newFail(sb, key, runs)
	}
}

// newestFirst run length encodes statuses from the most recent run back.
func newestFirst(runs []Run) []runhistory.StatusRun {
	summary := runhistory.Summarise(testRuns(runs))
	for i, j := 0, len(summary)-1; i < j; i, j = i+1, j-1 {
		summary[i], summary[j] = summary[j], summary[i]
	}
	return summary
}

func (p *Printer) summarise(sb *strings.Builder, key string, runs []Run) {
	if len(runs) == 0 {
		return
	}
	failed := false
	for _, r := range runs {
		failed = failed || r.Failed()
	}
	if p.opts.OnlyFails && !failed {
		return
	}

	last := runs[len(runs)-1]
	fmt.Fprintf(sb, "%s (%s)\n%s:\n\t", key, last.Suite, last.Unstructured)
	for _, s := range newestFirst(runs) {
		fmt.Fprintf(sb, "%s:%d ", p.status(s.Status), s.Count)
	}
	sb.WriteString("\n")
}

func (p *Printer) print(sb *strings.Builder, key string, runs []Run) {
	byID := map[string]Run{}
	for _, r := range runs {
		byID[r.ID] = r
	}

	header := false
	ix := 1
	for _, r := range runhistory.Latest(testRuns(runs)) {
		if p.opts.OnlyFails && !r.Failed() {
			continue
		}
		annotated := byID[r.ID]
		if !header {
			fmt.Fprintf(sb, "%s %s:\n%s\n", key, annotated.Suite, r.Unstructured)
			header = true
		}
		fmt.Fprintf(sb, "%d)%s, %s, id=%s\n", ix, r.FinishedOn.Time().Format(timeLayout), p.status(r.Status.Name), r.ID)

		switch {
		case p.opts.Dump:
			data, err := json.MarshalIndent(annotated, "", "  ")
			if err == nil {
				sb.Write(data)
			}
			sb.WriteString("\n\n")
		case p.opts.Verbose && r.Failed():
			for _, res := range r.Results {
				sb.WriteString(res.Log + "\n")
			}
			sb.WriteString("\n")
		}
		ix++
	}
}

func (p *Printer) newFail(sb *strings.Builder, key string, runs []Run) {
	r, ok := runhistory.NewFailure(testRuns(runs))
	if !ok {
		return
	}
	fmt.Fprintf(sb, "%s %s:\n%s\n %s, %s, id=%s\n", key, runs[0].Suite, r.Unstructured,
		r.FinishedOn.Time().Format(timeLayout), p.status(r.Status.Name), r.ID)
}

// score orders latest status runs, worst first: passes count up, failures count down and
// any other status scores -1.
func score(s runhistory.StatusRun) int {
	switch s.Status {
	case xrayv1.StatusPassed:
		return s.Count
	case xrayv1.StatusFailed:
		return -s.Count
	}
	return -1
}

func (p *Printer) grade(name string, keys []string, results map[string][]Run) {
	var latest []runhistory.StatusRun
	for _, key := range keys {
		if summary := newestFirst(results[key]); len(summary) > 0 {
			latest = append(latest, summary[0])
		}
	}
	if len(latest) == 0 {
		return
	}

	worst := latest[0]
	for _, s := range latest[1:] {
		if score(s) < score(worst) {
			worst = s
		}
	}
	passes := 0
	if worst.Status == xrayv1.StatusPassed {
		passes = worst.Count
	}
	if p.opts.GradePass != 0 && passes < p.opts.GradePass {
		return
	}

	parts := make([]string, 0, len(latest))
	for _, s := range latest {
		parts = append(parts, fmt.Sprintf("%s:%d", p.status(s.Status), s.Count))
	}
	fmt.Fprintf(p.w, "%s:\n%s:%d : [%s]\n\n", p.suite(name), p.status(worst.Status), worst.Count, strings.Join(parts, ", "))
}
