package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openshift/testgrade/pkg/testlists"
)

type TestListFlags struct {
	Lists     string
	Profile   string
	Separator string
	OutFile   string
	Options   testlists.Options
}

func NewTestListFlags() *TestListFlags {
	return &TestListFlags{
		Lists:     "configurations/testlists.yaml",
		Separator: " ",
	}
}

func (f *TestListFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Lists, "lists", f.Lists, "test list definitions")
	fs.StringVar(&f.Profile, "profile", f.Profile, "test profile to list")
	fs.StringVar(&f.Separator, "separator", f.Separator, "separator between tests")
	fs.StringVarP(&f.OutFile, "outputfile", "o", f.OutFile, "write the list to this file instead of stdout")

	o := &f.Options
	fs.BoolVar(&o.SortAlpha, "sort-alpha", o.SortAlpha, "sort the tests alphabetically")
	fs.BoolVar(&o.SortDuration, "sort-duration", o.SortDuration, "sort the tests by recorded duration, slowest first")
	fs.BoolVar(&o.Install, "install", o.Install, "start the list with install")
	fs.BoolVar(&o.Uninstall, "uninstall", o.Uninstall, "end the list with uninstall")
	fs.BoolVar(&o.InstallUninstall, "iu", o.InstallUninstall, "precede each test with install and follow it with uninstall")
}

func NewTestListCommand() *cobra.Command {
	f := NewTestListFlags()

	cmd := &cobra.Command{
		Use:   "testlist",
		Short: "Print the tests of a test profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Profile == "" {
				return errors.New("--profile is required")
			}
			defs, err := testlists.Load(f.Lists)
			if err != nil {
				return err
			}
			tests, err := defs.Profile(f.Profile, f.Options)
			if err != nil {
				return err
			}

			line := strings.Join(tests, f.Separator) + "\n"
			if f.OutFile == "" {
				fmt.Fprint(os.Stdout, line)
				return nil
			}
			return errors.Wrapf(os.WriteFile(f.OutFile, []byte(line), 0o644), "could not write %s", f.OutFile)
		},
	}
	f.BindFlags(cmd.Flags())

	return cmd
}
