package main

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openshift/testgrade/pkg/flags"
	"github.com/openshift/testgrade/pkg/results"
)

type ResultsFlags struct {
	XrayCommandFlags *XrayCommandFlags
	SourceFlags      *flags.SourceFlags
	FilterFlags      *flags.FilterFlags

	InFile  string
	OutFile string
	Keys    []string
	Suites  []string
	Options results.Options
}

func NewResultsFlags() *ResultsFlags {
	return &ResultsFlags{
		XrayCommandFlags: NewXrayCommandFlags(),
		SourceFlags:      flags.NewSourceFlags(),
		FilterFlags:      flags.NewFilterFlags(),
	}
}

func (f *ResultsFlags) BindFlags(fs *pflag.FlagSet) {
	f.XrayCommandFlags.BindFlags(fs)
	f.SourceFlags.BindFlags(fs)
	f.FilterFlags.BindFlags(fs)

	fs.StringVarP(&f.InFile, "infile", "i", f.InFile, "read results from a file written with --outfile instead of querying Xray")
	fs.StringVarP(&f.OutFile, "outfile", "o", f.OutFile, "file to cache JSON formatted results")
	fs.StringSliceVarP(&f.Keys, "tests", "t", f.Keys, "only these test Jira keys")
	fs.StringSliceVarP(&f.Suites, "e2enames", "e", f.Suites, "only the tests of these e2e suites")

	o := &f.Options
	fs.BoolVarP(&o.OnlyFails, "fails", "f", o.OnlyFails, "only tests with failed runs")
	fs.BoolVarP(&o.Print, "print", "p", o.Print, "print the runs of each test")
	fs.BoolVarP(&o.Verbose, "verbose", "v", o.Verbose, "print the log of failed runs")
	fs.BoolVarP(&o.Dump, "dump", "d", o.Dump, "dump the full record of each run")
	fs.BoolVarP(&o.Summarise, "summarise", "s", o.Summarise, "summarise the runs of each test")
	fs.BoolVar(&o.Ungroup, "ungroup", o.Ungroup, "do not group tests by e2e suite")
	fs.BoolVar(&o.Grade, "grade", o.Grade, "grade each e2e suite on its most recent runs")
	fs.IntVar(&o.GradePass, "gradepass", o.GradePass, "only show suites whose worst test passed at least this many times in a row")
	fs.BoolVar(&o.NewFails, "newfails", o.NewFails, "list tests whose latest run failed after a run that did not")
}

func (f *ResultsFlags) load(ctx context.Context, planKey string) (*results.Data, error) {
	if f.InFile != "" {
		return results.LoadData(f.InFile, planKey)
	}

	client, err := f.XrayCommandFlags.GetXrayClient()
	if err != nil {
		return nil, err
	}
	id, err := client.ResolveTestPlan(ctx, planKey)
	if err != nil {
		return nil, err
	}

	log.Infof("collecting set of tests in test plan %s", planKey)
	tests, err := client.GetTestsInTestPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Infof("collecting set of test executions in test plan %s", planKey)
	execs, err := client.GetTestExecutionsInTestPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	log.Infof("collecting set of test runs in test plan %s", planKey)
	start := time.Now()
	runs, err := collectRuns(ctx, client, execs, os.Stderr)
	if err != nil {
		return nil, err
	}
	log.Infof("collected %d test runs in %s", len(runs), time.Since(start))

	sourceMap, err := scrapeSourceMap(f.SourceFlags.SourceDir)
	if err != nil {
		return nil, err
	}
	return results.NewData(tests, execs, runs, sourceMap), nil
}

func NewResultsCommand() *cobra.Command {
	f := NewResultsFlags()

	cmd := &cobra.Command{
		Use:   "results KEY",
		Short: "List, summarise and grade the test runs of a test plan by e2e suite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planKey := args[0]
			if err := f.Options.Validate(); err != nil {
				return err
			}
			if f.InFile != "" && f.OutFile != "" {
				log.Warn("--infile trumps --outfile, ignoring --outfile")
				f.OutFile = ""
			}

			cutoff, err := f.FilterFlags.Cutoff(time.Now())
			if err != nil {
				return err
			}

			data, err := f.load(cmd.Context(), planKey)
			if err != nil {
				return errors.WithMessagef(err, "error loading results of %s", planKey)
			}
			if f.OutFile != "" {
				if err := data.Save(f.OutFile, planKey); err != nil {
					return err
				}
			}

			selected, err := data.Select(results.Filter{
				Keys:   f.Keys,
				Suites: f.Suites,
				Cutoff: cutoff,
				Status: f.FilterFlags.StatusFilter(),
			})
			if err != nil {
				return err
			}
			return results.NewPrinter(os.Stdout, f.Options).Print(data, selected)
		},
	}
	f.BindFlags(cmd.Flags())

	return cmd
}
