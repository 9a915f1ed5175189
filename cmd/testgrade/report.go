package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	v1 "github.com/openshift/testgrade/pkg/apis/config/v1"
	"github.com/openshift/testgrade/pkg/dataloader/loaderwithmetrics"
	"github.com/openshift/testgrade/pkg/dataloader/planloader"
	"github.com/openshift/testgrade/pkg/flags"
	"github.com/openshift/testgrade/pkg/html/reporthtml"
	"github.com/openshift/testgrade/pkg/jira"
	"github.com/openshift/testgrade/pkg/publish/gcs"
	"github.com/openshift/testgrade/pkg/report"
	"github.com/openshift/testgrade/pkg/scraper"
)

// allEnvironments names the report covering every test execution.
const allEnvironments = "all"

type ReportCommandFlags struct {
	XrayCommandFlags *XrayCommandFlags
	CacheFlags       *flags.CacheFlags
	ReportFlags      *flags.ReportFlags
	SourceFlags      *flags.SourceFlags
	JiraFlags        *flags.JiraFlags
	GoogleCloudFlags *flags.GoogleCloudFlags
	PushgatewayFlags *flags.PushgatewayFlags
}

func NewReportCommandFlags() *ReportCommandFlags {
	return &ReportCommandFlags{
		XrayCommandFlags: NewXrayCommandFlags(),
		CacheFlags:       flags.NewCacheFlags(),
		ReportFlags:      flags.NewReportFlags(),
		SourceFlags:      flags.NewSourceFlags(),
		JiraFlags:        flags.NewJiraFlags(),
		GoogleCloudFlags: flags.NewGoogleCloudFlags(),
		PushgatewayFlags: flags.NewPushgatewayFlags(),
	}
}

func (f *ReportCommandFlags) BindFlags(fs *pflag.FlagSet) {
	f.XrayCommandFlags.BindFlags(fs)
	f.CacheFlags.BindFlags(fs)
	f.ReportFlags.BindFlags(fs)
	f.SourceFlags.BindFlags(fs)
	f.JiraFlags.BindFlags(fs)
	f.GoogleCloudFlags.BindFlags(fs)
	f.PushgatewayFlags.BindFlags(fs)
}

func NewReportCommand() *cobra.Command {
	f := NewReportCommandFlags()

	cmd := &cobra.Command{
		Use:   "report KEY",
		Short: "Generate the run history reports of a test plan",
		Long: `Generate one report per combination of test environments found in the test
executions of the test plan, plus one covering all of them. Reports are built from the
cache directory, which --collect and --refresh update from Xray first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := f.ReportFlags.Validate(); err != nil {
				return err
			}
			config, err := f.XrayCommandFlags.GetConfig()
			if err != nil {
				return err
			}
			return f.run(cmd.Context(), config, args[0])
		},
	}
	f.BindFlags(cmd.Flags())

	return cmd
}

func (f *ReportCommandFlags) collect(ctx context.Context, config *v1.TestgradeConfig, cache planloader.Cache, planKey string) error {
	client, err := f.XrayCommandFlags.XrayFlags.GetXrayClient(config.Xray)
	if err != nil {
		return err
	}
	loaders := planloader.New(ctx, client, cache, planKey, f.CacheFlags.Refresh, planloader.DefaultDelay)
	loader := loaderwithmetrics.New(loaders, f.PushgatewayFlags.URL)
	loader.Load()
	return utilerrors.NewAggregate(loader.Errors())
}

// nolint:gocyclo
func (f *ReportCommandFlags) run(ctx context.Context, config *v1.TestgradeConfig, planKey string) error {
	cache := planloader.Cache{Dir: f.CacheFlags.CacheDir}
	if f.CacheFlags.ShouldCollect() {
		if err := f.collect(ctx, config, cache, planKey); err != nil {
			return errors.WithMessagef(err, "error collecting test plan %s", planKey)
		}
	}

	tests, err := cache.Tests(planKey)
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		return errors.Errorf("no tests cached for %s in %s, collect them with --collect", planKey, cache.Dir)
	}
	execs, err := cache.Executions(planKey)
	if err != nil {
		return err
	}
	runs, err := cache.Runs(execs)
	if err != nil {
		return err
	}

	sourceMap, err := scrapeSourceMap(f.SourceFlags.SourceDir)
	if err != nil {
		return err
	}
	if err := scraper.SaveSourceMap(flags.SourceMapPath(cache.Dir), sourceMap); err != nil {
		return err
	}

	report.NormalizeDefinitions(tests)
	order := report.OrderTests(tests)
	prepared := report.PrepareExecutions(execs, runs, order, f.ReportFlags.DefaultEnvironments(config.Report))

	jiraURL := f.JiraFlags.URL(config.Jira)
	opts := f.ReportFlags.Options(config.Report, jiraURL)

	jiraClient, err := f.JiraFlags.GetJiraClient(config.Jira)
	if err != nil {
		return err
	}
	lookup := jira.NewLookup(jiraClient)
	page := reporthtml.Page{PlanKey: planKey, Links: opts.Links, Generated: time.Now()}
	if plan, found, err := lookup.Issue(ctx, planKey); err != nil {
		log.WithError(err).Warn("could not look up test plan summary")
	} else if found {
		page.Summary = plan.Summary
	}
	refreshSummaries(ctx, lookup, prepared)

	combinations := append(report.EnvironmentCombinations(prepared), []string{allEnvironments})

	var written []string
	for _, envs := range combinations {
		selected := prepared
		if len(envs) != 1 || envs[0] != allEnvironments {
			selected = report.WithEnvironments(prepared, envs)
		}

		m, err := report.Build(tests, order, selected, sourceMap, opts)
		if err != nil {
			return errors.WithMessagef(err, "error building report for %v", envs)
		}

		page.Environments = envs
		if f.ReportFlags.Format == flags.FormatText {
			fmt.Fprintln(os.Stdout, report.NewTextRenderer().Render(m, page.Title()))
			continue
		}

		path := filepath.Join(f.ReportFlags.ResultsDir, reporthtml.FileName(planKey, envs))
		if err := writeReport(path, m, page); err != nil {
			return err
		}
		log.Infof("wrote %s", path)
		written = append(written, path)
	}

	if !f.GoogleCloudFlags.Enabled() || len(written) == 0 {
		return nil
	}
	publisher, err := gcs.NewPublisher(ctx, f.GoogleCloudFlags.StorageBucket, f.GoogleCloudFlags.StoragePrefix,
		f.GoogleCloudFlags.ServiceAccountCredentialFile)
	if err != nil {
		return err
	}
	defer publisher.Close()
	_, err = publisher.Publish(ctx, written...)
	return err
}

// refreshSummaries replaces execution summaries with the current Jira ones when a Jira
// client is configured.
func refreshSummaries(ctx context.Context, lookup *jira.Lookup, execs []report.Execution) {
	keys := make([]string, 0, len(execs))
	for _, e := range execs {
		keys = append(keys, e.Key)
	}
	issues, err := lookup.Issues(ctx, keys)
	if err != nil {
		log.WithError(err).Warn("could not look up test execution summaries")
		return
	}
	for i := range execs {
		if issue, ok := issues[execs[i].Key]; ok && issue.Summary != "" {
			execs[i].Summary = issue.Summary
		}
	}
}

func writeReport(path string, m *report.Matrix, page reporthtml.Page) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "could not create directory for %s", path)
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not create %s", path)
	}
	if err := reporthtml.Render(out, m, page); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
