// Package planloader collects the tests, test executions and test runs of a test plan from
// Xray into the JSON file cache reports are built from.
package planloader

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/cache/jsonfile"
	"github.com/openshift/testgrade/pkg/dataloader"
	"github.com/openshift/testgrade/pkg/util"
)

// DefaultDelay spaces test execution run queries to stay under the Xray rate limit.
const DefaultDelay = 500 * time.Millisecond

// Source is the part of the Xray client the loaders use.
type Source interface {
	ResolveTestPlan(ctx context.Context, jiraKey string) (string, error)
	GetTestsInTestPlan(ctx context.Context, issueID string) (map[string]xrayv1.Test, error)
	GetTestExecutionsInTestPlan(ctx context.Context, issueID string) (map[string]xrayv1.TestExecution, error)
	GetTestExecutionRuns(ctx context.Context, issueID string) ([]xrayv1.TestRun, error)
}

// plan is shared by the loaders of one test plan.
type plan struct {
	key        string
	issueID    string
	executions map[string]xrayv1.TestExecution
}

func (p *plan) resolve(ctx context.Context, source Source) (string, error) {
	if p.issueID != "" {
		return p.issueID, nil
	}
	id, err := source.ResolveTestPlan(ctx, p.key)
	if err != nil {
		return "", err
	}
	p.issueID = id
	return id, nil
}

// New returns the loaders collecting a test plan, to be run in order. Runs of executions
// already cached are collected again only with refresh.
func New(ctx context.Context, source Source, cache Cache, planKey string, refresh bool, delay time.Duration) []dataloader.DataLoader {
	p := &plan{key: planKey}
	return []dataloader.DataLoader{
		&TestsLoader{ctx: ctx, source: source, cache: cache, plan: p},
		&ExecutionsLoader{ctx: ctx, source: source, cache: cache, plan: p},
		&RunsLoader{ctx: ctx, source: source, cache: cache, plan: p, refresh: refresh, delay: delay},
	}
}

// TestsLoader merges the tests of the plan into the cache.
type TestsLoader struct {
	ctx    context.Context
	source Source
	cache  Cache
	plan   *plan
	errs   []error
}

func (l *TestsLoader) Name() string {
	return "tests"
}

func (l *TestsLoader) Load() {
	id, err := l.plan.resolve(l.ctx, l.source)
	if err != nil {
		l.errs = append(l.errs, err)
		return
	}

	log.Infof("collecting set of tests in test plan %s", l.plan.key)
	start := time.Now()
	tests, err := l.source.GetTestsInTestPlan(l.ctx, id)
	if err != nil {
		l.errs = append(l.errs, errors.Wrapf(err, "error collecting tests of %s", l.plan.key))
		return
	}
	log.Infof("collected %d tests in %s", len(tests), time.Since(start))

	if err := jsonfile.UpdateValues(l.cache.TestsPath(l.plan.key), tests); err != nil {
		l.errs = append(l.errs, err)
	}
}

func (l *TestsLoader) Errors() []error {
	return l.errs
}

// ExecutionsLoader merges the test executions of the plan into the cache.
type ExecutionsLoader struct {
	ctx    context.Context
	source Source
	cache  Cache
	plan   *plan
	errs   []error
}

func (l *ExecutionsLoader) Name() string {
	return "executions"
}

func (l *ExecutionsLoader) Load() {
	id, err := l.plan.resolve(l.ctx, l.source)
	if err != nil {
		l.errs = append(l.errs, err)
		return
	}

	log.Infof("collecting set of test executions in test plan %s", l.plan.key)
	start := time.Now()
	execs, err := l.source.GetTestExecutionsInTestPlan(l.ctx, id)
	if err != nil {
		l.errs = append(l.errs, errors.Wrapf(err, "error collecting test executions of %s", l.plan.key))
		return
	}
	log.Infof("collected %d test executions in %s", len(execs), time.Since(start))
	l.plan.executions = execs

	if err := jsonfile.UpdateValues(l.cache.ExecutionsPath(l.plan.key), execs); err != nil {
		l.errs = append(l.errs, err)
	}
}

func (l *ExecutionsLoader) Errors() []error {
	return l.errs
}

// RunsLoader saves the runs of each test execution of the plan to its own cache file.
type RunsLoader struct {
	ctx     context.Context
	source  Source
	cache   Cache
	plan    *plan
	refresh bool
	delay   time.Duration
	errs    []error

	// collected counts the executions fetched by the last Load.
	collected int
}

func (l *RunsLoader) Name() string {
	return "runs"
}

func (l *RunsLoader) Load() {
	execs := l.plan.executions
	if execs == nil {
		var err error
		if execs, err = l.cache.Executions(l.plan.key); err != nil {
			l.errs = append(l.errs, err)
			return
		}
	}

	keys := make([]string, 0, len(execs))
	for k := range execs {
		keys = append(keys, k)
	}
	util.SortJiraKeys(keys)

	log.Infof("collecting set of test runs in test plan %s", l.plan.key)
	start := time.Now()
	limiter := util.NewRateLimiter(l.delay)
	defer limiter.Close()

	l.collected = 0
	for _, key := range keys {
		path := l.cache.RunsPath(key)
		if !l.refresh && jsonfile.Exists(path) {
			log.Debugf("test runs of %s already cached", key)
			continue
		}
		if l.collected > 0 {
			limiter.Tick()
		}

		execStart := time.Now()
		runs, err := l.source.GetTestExecutionRuns(l.ctx, execs[key].IssueID)
		if err != nil {
			// later executions are likely to hit the same failure
			l.errs = append(l.errs, errors.Wrapf(err, "error collecting test runs of %s", key))
			return
		}
		l.collected++
		log.Infof("collected %d test runs of %s in %s", len(runs), key, time.Since(execStart))

		if runs == nil {
			runs = []xrayv1.TestRun{}
		}
		if err := jsonfile.Save(path, runs); err != nil {
			l.errs = append(l.errs, err)
			return
		}
	}
	log.Infof("collected test runs of %d test executions in %s", l.collected, time.Since(start))
}

func (l *RunsLoader) Errors() []error {
	return l.errs
}
