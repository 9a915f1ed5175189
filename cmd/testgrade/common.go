package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	v1 "github.com/openshift/testgrade/pkg/apis/config/v1"
	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/cache/jsonfile"
	"github.com/openshift/testgrade/pkg/dataloader/planloader"
	"github.com/openshift/testgrade/pkg/flags"
	"github.com/openshift/testgrade/pkg/flags/configflags"
	"github.com/openshift/testgrade/pkg/scraper"
	"github.com/openshift/testgrade/pkg/util"
	"github.com/openshift/testgrade/pkg/xrayclient"
)

// xrayRunDelay spaces test execution run queries, Xray answers bursts with 429s.
const xrayRunDelay = planloader.DefaultDelay

// XrayCommandFlags are shared by every command talking to Xray.
type XrayCommandFlags struct {
	ConfigFlags *configflags.ConfigFlags
	XrayFlags   *flags.XrayFlags
}

func NewXrayCommandFlags() *XrayCommandFlags {
	return &XrayCommandFlags{
		ConfigFlags: configflags.NewConfigFlags(),
		XrayFlags:   flags.NewXrayFlags(),
	}
}

func (f *XrayCommandFlags) BindFlags(fs *pflag.FlagSet) {
	f.ConfigFlags.BindFlags(fs)
	f.XrayFlags.BindFlags(fs)
}

func (f *XrayCommandFlags) GetConfig() (*v1.TestgradeConfig, error) {
	return f.ConfigFlags.GetConfig()
}

func (f *XrayCommandFlags) GetXrayClient() (*xrayclient.Client, error) {
	config, err := f.GetConfig()
	if err != nil {
		return nil, err
	}
	return f.XrayFlags.GetXrayClient(config.Xray)
}

// scrapeSourceMap scrapes the test sources under dir, logging every warning.
func scrapeSourceMap(dir string) (map[string]string, error) {
	result, err := scraper.ScrapeSources(dir)
	if err != nil {
		return nil, errors.WithMessagef(err, "error scraping test sources in %s", dir)
	}
	for _, w := range result.Warnings {
		log.Warn(w.String())
	}
	return result.SourceMap(), nil
}

// collectRuns fetches the runs of every test execution, pacing the queries.
func collectRuns(ctx context.Context, client *xrayclient.Client, execs map[string]xrayv1.TestExecution, progress io.Writer) ([]xrayv1.TestRun, error) {
	keys := make([]string, 0, len(execs))
	for k := range execs {
		keys = append(keys, k)
	}
	util.SortJiraKeys(keys)

	limiter := util.NewRateLimiter(xrayRunDelay)
	defer limiter.Close()

	var runs []xrayv1.TestRun
	for i, key := range keys {
		if i > 0 {
			limiter.Tick()
		}
		fmt.Fprintf(progress, "%s ", key)
		execRuns, err := client.GetTestExecutionRuns(ctx, execs[key].IssueID)
		if err != nil {
			return nil, errors.WithMessagef(err, "test execution %s", key)
		}
		runs = append(runs, execRuns...)
	}
	fmt.Fprintln(progress)
	return runs, nil
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := jsonfile.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// printKeyed prints each entry of m, in Jira key order, as its key followed by its JSON.
func printKeyed[T any](w io.Writer, m map[string]T) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	util.SortJiraKeys(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s: ", k)
		if err := printJSON(w, m[k]); err != nil {
			return err
		}
	}
	return nil
}
