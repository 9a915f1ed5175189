package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/openshift/testgrade/pkg/version"
)

var logLevel = "info"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "testgrade",
	Short: "Grade E2E test run history recorded in Xray",
	Long: `testgrade collects the tests, test executions and test runs of Xray test plans,
maps test definitions back to the Ginkgo sources that declare them, grades tests and
suites on their run history and renders HTML reports of the results.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			log.WithError(err).Fatal("cannot parse log-level")
		}
		log.SetLevel(level)
		log.Debugf("testgrade built from %s", version.Get().GitCommit)
	},
}

func main() {

	// Add some millisecond precision to log timestamps, useful for debugging performance.
	formatter := new(log.TextFormatter)
	formatter.TimestampFormat = "2006-01-02T15:04:05.999Z07:00"
	formatter.FullTimestamp = true
	formatter.DisableColors = false
	log.SetFormatter(formatter)

	rootCmd.AddCommand(
		NewTestsCommand(),
		NewTestPlanCommand(),
		NewTestSetsCommand(),
		NewTestExecutionsCommand(),
		NewTestRunsCommand(),
		NewScrapeCommand(),
		NewReportCommand(),
		NewResultsCommand(),
		NewAuditCommand(),
		NewTestListCommand(),
		NewVersionCommand(),
	)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (trace,debug,info,warn,error) (default info)")

	err := rootCmd.Execute()
	if err != nil {
		log.WithError(err).Fatal("could not execute root command")
	}
}
