package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openshift/testgrade/pkg/audit"
	"github.com/openshift/testgrade/pkg/flags"
)

type AuditFlags struct {
	XrayCommandFlags *XrayCommandFlags
	SourceFlags      *flags.SourceFlags

	TestsFile    string
	TestSetsFile string
}

func NewAuditFlags() *AuditFlags {
	return &AuditFlags{
		XrayCommandFlags: NewXrayCommandFlags(),
		SourceFlags:      flags.NewSourceFlags(),
	}
}

func (f *AuditFlags) BindFlags(fs *pflag.FlagSet) {
	f.XrayCommandFlags.BindFlags(fs)
	f.SourceFlags.BindFlags(fs)
	fs.StringVar(&f.TestsFile, "tests", f.TestsFile, "tests written by 'tests --outfile', listed from Xray when empty")
	fs.StringVar(&f.TestSetsFile, "testsets", f.TestSetsFile, "test sets written by 'testsets --outfile', collected from Xray when empty")
}

func NewAuditCommand() *cobra.Command {
	f := NewAuditFlags()

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report tests missing definitions, test plans or test sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			tests, err := loadTests(cmd.Context(), f.XrayCommandFlags, f.TestsFile)
			if err != nil {
				return err
			}
			catalog, err := loadTestSets(cmd, f.XrayCommandFlags, f.SourceFlags, f.TestSetsFile)
			if err != nil {
				return err
			}
			audit.Audit(tests, catalog).Write(os.Stdout)
			return nil
		},
	}
	f.BindFlags(cmd.Flags())

	return cmd
}
