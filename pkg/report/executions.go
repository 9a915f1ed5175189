package report

import (
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/scraper"
	"github.com/openshift/testgrade/pkg/util"
)

const (
	// UnknownDefinition replaces missing test definitions.
	UnknownDefinition = "Unknown.unknown"
	// NoEnvironment names the environments of executions recorded without any when no
	// defaults are configured either.
	NoEnvironment = "none"
)

// DefaultTestEnvironments are assigned to executions recorded without environments unless
// configured otherwise.
var DefaultTestEnvironments = []string{
	"osf_ubuntu",
	"osv_20.04.3_lts",
	"osk_5.8.0-63-generic",
	"k8srel_1.21",
	"k8spatchrel_1.21.8",
	"plat_hcloud",
}

// Execution is a test execution placed in the report, with the runs of the plan tests.
type Execution struct {
	Key          string
	IssueID      string
	Summary      string
	Environments []string
	// Timestamp is the earliest finish time of the runs, in epoch milliseconds.
	Timestamp int64
	Runs      map[string]xrayv1.TestRun
}

// NormalizeDefinitions gives tests without a definition the UnknownDefinition placeholder.
func NormalizeDefinitions(tests map[string]xrayv1.Test) {
	for key, test := range tests {
		if test.Definition() == "" {
			log.Warnf("set definition to unknown for %s", key)
			def := UnknownDefinition
			test.Unstructured = &def
			tests[key] = test
		}
	}
}

// OrderTests orders test keys by issue number, then pulls tests sharing a classname up to
// the first test of that classname.
func OrderTests(tests map[string]xrayv1.Test) []string {
	keys := make([]string, 0, len(tests))
	for k := range tests {
		keys = append(keys, k)
	}
	util.SortJiraKeys(keys)

	placed := make(map[string]bool, len(keys))
	ordered := make([]string, 0, len(keys))
	for _, k := range keys {
		if placed[k] {
			continue
		}
		placed[k] = true
		ordered = append(ordered, k)
		classname := scraper.ClassName(tests[k].Definition())
		for _, kk := range keys {
			if placed[kk] {
				continue
			}
			if scraper.ClassName(tests[kk].Definition()) == classname {
				placed[kk] = true
				ordered = append(ordered, kk)
			}
		}
	}
	return ordered
}

// PrepareExecutions orders executions newest first by issue number and timestamps them
// with the earliest finish time of any run of the given tests. Executions without such runs
// are discarded. Executions without environments get defaultEnvs, or NoEnvironment when
// defaultEnvs is empty.
func PrepareExecutions(execs map[string]xrayv1.TestExecution, runs map[string][]xrayv1.TestRun, testKeys []string, defaultEnvs []string) []Execution {
	keys := make([]string, 0, len(execs))
	for k := range execs {
		keys = append(keys, k)
	}
	util.SortJiraKeys(keys)

	prepared := make([]Execution, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		exe := execs[keys[i]]

		envs := exe.TestEnvironments
		if len(envs) == 0 {
			envs = defaultEnvs
		}
		if len(envs) == 0 {
			envs = []string{NoEnvironment}
		}
		envs = append([]string(nil), envs...)
		sort.Strings(envs)

		byTest := map[string]xrayv1.TestRun{}
		for _, r := range runs[exe.Jira.Key] {
			byTest[r.Key()] = r
		}

		var ts int64
		for _, testKey := range testKeys {
			r, ok := byTest[testKey]
			if !ok || r.FinishedOn.IsZero() {
				continue
			}
			if finished := int64(r.FinishedOn); ts == 0 || finished < ts {
				ts = finished
			}
		}
		if ts == 0 {
			log.Infof("no test runs found, discarding test execution %s", exe.Jira.Key)
			continue
		}

		prepared = append(prepared, Execution{
			Key:          exe.Jira.Key,
			IssueID:      exe.IssueID,
			Summary:      exe.Jira.Summary,
			Environments: envs,
			Timestamp:    ts,
			Runs:         byTest,
		})
	}
	return prepared
}

func envKey(envs []string) string {
	return strings.Join(envs, "\x00")
}

// EnvironmentCombinations returns the distinct environment sets in order of first appearance.
func EnvironmentCombinations(execs []Execution) [][]string {
	seen := map[string]bool{}
	var combis [][]string
	for _, e := range execs {
		k := envKey(e.Environments)
		if seen[k] {
			continue
		}
		seen[k] = true
		combis = append(combis, e.Environments)
	}
	return combis
}

// WithEnvironments keeps the executions run with exactly envs.
func WithEnvironments(execs []Execution, envs []string) []Execution {
	want := envKey(envs)
	var kept []Execution
	for _, e := range execs {
		if envKey(e.Environments) == want {
			kept = append(kept, e)
		}
	}
	return kept
}
