package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/cache/jsonfile"
	"github.com/openshift/testgrade/pkg/flags"
	"github.com/openshift/testgrade/pkg/testsets"
)

type TestsFlags struct {
	XrayCommandFlags *XrayCommandFlags
	FilterFlags      *flags.FilterFlags

	NoTestSets  bool
	NoTestPlans bool
	InFile      string
	OutFile     string
}

func NewTestsFlags() *TestsFlags {
	return &TestsFlags{
		XrayCommandFlags: NewXrayCommandFlags(),
		FilterFlags:      flags.NewFilterFlags(),
	}
}

func (f *TestsFlags) BindFlags(fs *pflag.FlagSet) {
	f.XrayCommandFlags.BindFlags(fs)
	f.FilterFlags.BindFlags(fs)

	fs.BoolVar(&f.NoTestSets, "nots", f.NoTestSets, "only tests not in any test set")
	fs.BoolVar(&f.NoTestPlans, "notp", f.NoTestPlans, "only tests not in any test plan")
	fs.StringVarP(&f.InFile, "infile", "i", f.InFile, "read tests from a file written with --outfile instead of querying Xray")
	fs.StringVarP(&f.OutFile, "outfile", "o", f.OutFile, "file to cache JSON formatted tests")
}

// loadTests reads tests from path, or lists them from Xray when path is empty.
func loadTests(ctx context.Context, xf *XrayCommandFlags, path string) (map[string]xrayv1.Test, error) {
	tests := map[string]xrayv1.Test{}
	if path != "" {
		found, err := jsonfile.Load(path, &tests)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.Errorf("tests file %s does not exist", path)
		}
		return tests, nil
	}

	client, err := xf.GetXrayClient()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	tests, err = client.ListTests(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "error listing tests")
	}
	log.Infof("collected %d tests in %s", len(tests), time.Since(start))
	return tests, nil
}

func refKeys(refs *xrayv1.RefList) []string {
	if refs == nil {
		return nil
	}
	keys := make([]string, 0, len(refs.Results))
	for _, r := range refs.Results {
		keys = append(keys, r.Jira.Key)
	}
	return keys
}

func NewTestsCommand() *cobra.Command {
	f := NewTestsFlags()

	cmd := &cobra.Command{
		Use:   "tests",
		Short: "List the tests of the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.InFile != "" && f.OutFile != "" {
				log.Warn("--infile trumps --outfile, ignoring --outfile")
				f.OutFile = ""
			}

			tests, err := loadTests(cmd.Context(), f.XrayCommandFlags, f.InFile)
			if err != nil {
				return err
			}
			if f.OutFile != "" {
				if err := jsonfile.Save(f.OutFile, tests); err != nil {
					return err
				}
			}

			cutoff, err := f.FilterFlags.Cutoff(time.Now())
			if err != nil {
				return err
			}
			status := f.FilterFlags.StatusFilter()

			for _, key := range testsets.Keys(tests) {
				test := tests[key]
				if !status.Match(test.Jira.StatusName()) {
					continue
				}
				if f.NoTestSets && len(refKeys(test.TestSets)) != 0 {
					continue
				}
				if f.NoTestPlans && len(refKeys(test.TestPlans)) != 0 {
					continue
				}
				if cutoff > 0 && !ranSince(test, cutoff) {
					continue
				}
				printTest(os.Stdout, test)
			}
			return nil
		},
	}
	f.BindFlags(cmd.Flags())

	return cmd
}

// ranSince is true when one of the sampled runs of the test finished at or after cutoff.
func ranSince(test xrayv1.Test, cutoff int64) bool {
	if test.TestRuns == nil {
		return false
	}
	for _, r := range test.TestRuns.Results {
		if int64(r.FinishedOn) >= cutoff {
			return true
		}
	}
	return false
}

func printTest(w io.Writer, test xrayv1.Test) {
	fmt.Fprintf(w, "%s: \n", test.Jira.Key)
	fmt.Fprintf(w, "   issueId: %s\n", test.IssueID)
	fmt.Fprintf(w, "   summary: %s\n", test.Jira.Summary)
	fmt.Fprintf(w, "   status: %s\n", test.Jira.StatusName())
	fmt.Fprintf(w, "   definition: %s\n", test.Definition())
	fmt.Fprintf(w, "   testSets: [%s]\n", strings.Join(refKeys(test.TestSets), ", "))
	fmt.Fprintf(w, "   testPlans: [%s]\n", strings.Join(refKeys(test.TestPlans), ", "))
}
