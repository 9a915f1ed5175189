package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openshift/testgrade/pkg/cache/jsonfile"
	"github.com/openshift/testgrade/pkg/flags"
	"github.com/openshift/testgrade/pkg/grading"
	"github.com/openshift/testgrade/pkg/runhistory"
	"github.com/openshift/testgrade/pkg/testsets"
)

func NewTestPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testplan",
		Short: "Inspect and grade test plans",
	}
	cmd.AddCommand(
		newTestPlanListCommand(),
		newTestPlanTestsCommand(),
		newTestPlanExecutionsCommand(),
		NewTestPlanGradeCommand(),
	)
	return cmd
}

func newTestPlanListCommand() *cobra.Command {
	f := NewXrayCommandFlags()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the test plans of the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := f.GetXrayClient()
			if err != nil {
				return err
			}
			plans, err := client.ListTestPlans(cmd.Context())
			if err != nil {
				return err
			}
			for _, key := range testsets.Keys(plans) {
				plan := plans[key]
				fmt.Fprintf(os.Stdout, "%s: %s\ndescription:\n%s\n\n", key, plan.Jira.Summary, plan.Jira.Description)
			}
			return nil
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}

func newTestPlanTestsCommand() *cobra.Command {
	f := NewXrayCommandFlags()
	cmd := &cobra.Command{
		Use:   "tests KEY",
		Short: "List the tests of a test plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := f.GetXrayClient()
			if err != nil {
				return err
			}
			id, err := client.ResolveTestPlan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tests, err := client.GetTestsInTestPlan(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printKeyed(os.Stdout, tests)
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}

func newTestPlanExecutionsCommand() *cobra.Command {
	f := NewXrayCommandFlags()
	cmd := &cobra.Command{
		Use:   "executions KEY",
		Short: "List the test executions of a test plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := f.GetXrayClient()
			if err != nil {
				return err
			}
			id, err := client.ResolveTestPlan(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			execs, err := client.GetTestExecutionsInTestPlan(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printKeyed(os.Stdout, execs)
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}

type TestPlanGradeFlags struct {
	XrayCommandFlags *XrayCommandFlags
	SourceFlags      *flags.SourceFlags

	OutDir string
}

func NewTestPlanGradeFlags() *TestPlanGradeFlags {
	return &TestPlanGradeFlags{
		XrayCommandFlags: NewXrayCommandFlags(),
		SourceFlags:      flags.NewSourceFlags(),
	}
}

func (f *TestPlanGradeFlags) BindFlags(fs *pflag.FlagSet) {
	f.XrayCommandFlags.BindFlags(fs)
	f.SourceFlags.BindFlags(fs)
	fs.StringVarP(&f.OutDir, "outdir", "o", f.OutDir, "directory to write the collected runs, indexes and grades to as JSON")
}

// comparison is the run history index together with the histories of each suite directory.
type comparison struct {
	*runhistory.Index
	BySrc map[string]runhistory.History `json:"BySrc"`
}

func NewTestPlanGradeCommand() *cobra.Command {
	f := NewTestPlanGradeFlags()

	cmd := &cobra.Command{
		Use:   "grade KEY",
		Short: "Grade the test definitions and suites of a test plan on their run history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			planKey := args[0]

			client, err := f.XrayCommandFlags.GetXrayClient()
			if err != nil {
				return err
			}
			id, err := client.ResolveTestPlan(ctx, planKey)
			if err != nil {
				return err
			}
			execs, err := client.GetTestExecutionsInTestPlan(ctx, id)
			if err != nil {
				return err
			}

			start := time.Now()
			runs, err := collectRuns(ctx, client, execs, os.Stderr)
			if err != nil {
				return err
			}
			log.Infof("collected %d test runs of %d test executions in %s", len(runs), len(execs), time.Since(start))

			save := func(name string, v interface{}) error {
				if f.OutDir == "" {
					return nil
				}
				return jsonfile.Save(filepath.Join(f.OutDir, name), v)
			}
			if err := save(planKey+".testruns.json", runs); err != nil {
				return err
			}

			idx, err := runhistory.BuildIndex(runs)
			if err != nil {
				return errors.WithMessagef(err, "error indexing test runs of %s", planKey)
			}

			sourceMap, err := scrapeSourceMap(f.SourceFlags.SourceDir)
			if err != nil {
				return err
			}
			if f.OutDir != "" {
				if err := jsonfile.Save(flags.SourceMapPath(f.OutDir), sourceMap); err != nil {
					return err
				}
			}

			comp := comparison{Index: idx, BySrc: idx.BySource(sourceMap)}
			if err := save(planKey+".comp.json", comp); err != nil {
				return err
			}
			if err := save(planKey+".definitions.json", idx.ByDefinition); err != nil {
				return err
			}

			grades := grading.GradeAll(idx.ByDefinition)
			if err := save(planKey+".definition.grades.json", grades); err != nil {
				return err
			}

			srcGrades, _ := grading.SourceGrades(grades, sourceMap)
			if err := save(planKey+".src.grades.json", srcGrades); err != nil {
				return err
			}

			for _, sg := range grading.Sorted(srcGrades) {
				fmt.Fprintf(os.Stdout, "%d %s\n", sg.Grade, sg.Suite)
			}

			stats, err := grading.Summary(grades)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "\n%d definitions: min %.0f, max %.0f, mean %.2f, median %.1f, p90 %.1f\n",
				stats.Count, stats.Min, stats.Max, stats.Mean, stats.Median, stats.P90)
			return nil
		},
	}
	f.BindFlags(cmd.Flags())

	return cmd
}
