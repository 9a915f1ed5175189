package flags

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"k8s.io/apimachinery/pkg/util/sets"

	v1 "github.com/openshift/testgrade/pkg/apis/config/v1"
	"github.com/openshift/testgrade/pkg/report"
)

const (
	FormatHTML = "html"
	FormatText = "text"
)

// ReportFlags holds the report matrix and output settings.
type ReportFlags struct {
	ResultsDir       string
	Format           string
	Columns          int
	SampleDepth      int
	WeightBase       uint
	TestEnvironments []string
}

func NewReportFlags() *ReportFlags {
	return &ReportFlags{
		ResultsDir: filepath.Join("artifacts", "xray-report", "html"),
		Format:     FormatHTML,
	}
}

func (f *ReportFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ResultsDir, "resultsdir", f.ResultsDir, "directory for generated reports")
	fs.StringVar(&f.Format, "format", f.Format, "report format, html or text")
	fs.IntVar(&f.Columns, "columns", f.Columns, "maximum number of test executions in a report (default 42)")
	fs.IntVar(&f.SampleDepth, "sample-depth", f.SampleDepth, "number of recent test executions weighted by recency when ordering (default 14)")
	fs.UintVar(&f.WeightBase, "weight-base", f.WeightBase, "exponent of the weight of the most recent test execution (default 32)")
	fs.StringSliceVar(&f.TestEnvironments, "testenvs", f.TestEnvironments, "test environments assigned to test executions recorded without any (default "+strings.Join(report.DefaultTestEnvironments, ",")+")")
}

func (f *ReportFlags) Validate() error {
	if f.Format != FormatHTML && f.Format != FormatText {
		return errors.Errorf("unsupported format %q", f.Format)
	}
	return nil
}

// Options merges the flags over the configuration file and the defaults.
func (f *ReportFlags) Options(config v1.ReportConfig, jiraURL string) report.Options {
	opts := report.DefaultOptions()
	opts.Links = report.LinkBuilder{BaseURL: jiraURL}

	if len(config.SetupTeardown) > 0 {
		opts.SetupTeardown = sets.New[string](config.SetupTeardown...)
	}
	switch {
	case f.Columns > 0:
		opts.Columns = f.Columns
	case config.Columns > 0:
		opts.Columns = config.Columns
	}
	switch {
	case f.SampleDepth > 0:
		opts.SampleDepth = f.SampleDepth
	case config.SampleDepth > 0:
		opts.SampleDepth = config.SampleDepth
	}
	switch {
	case f.WeightBase > 0:
		opts.WeightBase = f.WeightBase
	case config.WeightBase > 0:
		opts.WeightBase = config.WeightBase
	}
	return opts
}

// DefaultEnvironments returns the environments for executions recorded without any.
func (f *ReportFlags) DefaultEnvironments(config v1.ReportConfig) []string {
	if len(f.TestEnvironments) > 0 {
		return f.TestEnvironments
	}
	if len(config.TestEnvironments) > 0 {
		return config.TestEnvironments
	}
	return report.DefaultTestEnvironments
}
