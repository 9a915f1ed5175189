package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/openshift/testgrade/pkg/runhistory"
)

func NewTestExecutionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testexecutions",
		Short: "Inspect test executions",
	}
	cmd.AddCommand(newTestExecutionsListCommand(), newTestExecutionRunsCommand())
	return cmd
}

func newTestExecutionsListCommand() *cobra.Command {
	f := NewXrayCommandFlags()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the test executions of the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := f.GetXrayClient()
			if err != nil {
				return err
			}
			execs, err := client.ListTestExecutions(cmd.Context())
			if err != nil {
				return err
			}
			return printKeyed(os.Stdout, execs)
		},
	}
	f.BindFlags(cmd.Flags())
	return cmd
}

func newTestExecutionRunsCommand() *cobra.Command {
	f := NewXrayCommandFlags()
	var byTest bool
	cmd := &cobra.Command{
		Use:   "runs KEY",
		Short: "List the test runs of a test execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := f.GetXrayClient()
			if err != nil {
				return err
			}
			id, err := client.ResolveTestExecution(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			runs, err := client.GetTestExecutionRuns(cmd.Context(), id)
			if err != nil {
				return err
			}
			if byTest {
				return printKeyed(os.Stdout, runhistory.GroupByKey(runs))
			}
			return printJSON(os.Stdout, runs)
		},
	}
	f.BindFlags(cmd.Flags())
	cmd.Flags().BoolVar(&byTest, "by-test", byTest, "print the runs grouped by test key")
	return cmd
}
