package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
)

type TestRunsFlags struct {
	XrayCommandFlags *XrayCommandFlags

	FailedOnly bool
	Succinct   bool
}

func NewTestRunsFlags() *TestRunsFlags {
	return &TestRunsFlags{
		XrayCommandFlags: NewXrayCommandFlags(),
	}
}

func (f *TestRunsFlags) BindFlags(fs *pflag.FlagSet) {
	f.XrayCommandFlags.BindFlags(fs)
	fs.BoolVar(&f.FailedOnly, "failed", f.FailedOnly, "only print failed test runs")
	fs.BoolVar(&f.Succinct, "succinct", f.Succinct, "print only the finish time, id and logs of each run")
}

func NewTestRunsCommand() *cobra.Command {
	f := NewTestRunsFlags()

	cmd := &cobra.Command{
		Use:   "testruns KEY",
		Short: "List the test runs of a test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := f.XrayCommandFlags.GetXrayClient()
			if err != nil {
				return err
			}
			id, err := client.ResolveTest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			runs, err := client.GetTestRuns(cmd.Context(), id)
			if err != nil {
				return err
			}

			if f.FailedOnly {
				var failed []xrayv1.TestRun
				for _, r := range runs {
					if r.Failed() {
						failed = append(failed, r)
					}
				}
				runs = failed
			}
			if !f.Succinct {
				return printJSON(os.Stdout, runs)
			}
			for _, r := range runs {
				fmt.Fprintf(os.Stdout, "{\n%s %s\n", r.FinishedOn.Time().Format("2006-01-02 15:04:05"), r.ID)
				for _, res := range r.Results {
					fmt.Fprintln(os.Stdout, res.Log)
				}
				fmt.Fprint(os.Stdout, "}\n\n")
			}
			return nil
		},
	}
	f.BindFlags(cmd.Flags())

	return cmd
}
