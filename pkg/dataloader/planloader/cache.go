package planloader

import (
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/cache/jsonfile"
)

// Cache is the directory of JSON files holding collected test plan data:
//
//	<plan>.tests.json       tests of the plan by Jira key
//	<plan>.executions.json  test executions of the plan by Jira key
//	exec.<exec>.json        test runs of one test execution
type Cache struct {
	Dir string
}

func (c Cache) TestsPath(planKey string) string {
	return filepath.Join(c.Dir, fmt.Sprintf("%s.tests.json", planKey))
}

func (c Cache) ExecutionsPath(planKey string) string {
	return filepath.Join(c.Dir, fmt.Sprintf("%s.executions.json", planKey))
}

func (c Cache) RunsPath(execKey string) string {
	return filepath.Join(c.Dir, fmt.Sprintf("exec.%s.json", execKey))
}

// Tests loads the cached tests of a plan, empty when nothing was collected.
func (c Cache) Tests(planKey string) (map[string]xrayv1.Test, error) {
	tests := map[string]xrayv1.Test{}
	if _, err := jsonfile.Load(c.TestsPath(planKey), &tests); err != nil {
		return nil, err
	}
	return tests, nil
}

// Executions loads the cached test executions of a plan, empty when nothing was collected.
func (c Cache) Executions(planKey string) (map[string]xrayv1.TestExecution, error) {
	execs := map[string]xrayv1.TestExecution{}
	if _, err := jsonfile.Load(c.ExecutionsPath(planKey), &execs); err != nil {
		return nil, err
	}
	return execs, nil
}

// Runs loads the cached runs of every execution. Executions without a cache file have no runs.
func (c Cache) Runs(execs map[string]xrayv1.TestExecution) (map[string][]xrayv1.TestRun, error) {
	runs := make(map[string][]xrayv1.TestRun, len(execs))
	for key := range execs {
		var execRuns []xrayv1.TestRun
		found, err := jsonfile.Load(c.RunsPath(key), &execRuns)
		if err != nil {
			return nil, err
		}
		if !found {
			log.Warnf("no cached test runs for test execution %s", key)
			continue
		}
		runs[key] = execRuns
	}
	return runs, nil
}
