package main

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openshift/testgrade/pkg/flags"
	"github.com/openshift/testgrade/pkg/testsets"
)

type TestSetsFlags struct {
	XrayCommandFlags *XrayCommandFlags
	SourceFlags      *flags.SourceFlags

	InFile  string
	OutFile string
}

func NewTestSetsFlags() *TestSetsFlags {
	return &TestSetsFlags{
		XrayCommandFlags: NewXrayCommandFlags(),
		SourceFlags:      flags.NewSourceFlags(),
	}
}

func (f *TestSetsFlags) BindFlags(fs *pflag.FlagSet) {
	f.XrayCommandFlags.BindFlags(fs)
	f.SourceFlags.BindFlags(fs)
	fs.StringVarP(&f.InFile, "infile", "i", f.InFile, "read test sets from a file written with --outfile instead of querying Xray")
	fs.StringVarP(&f.OutFile, "outfile", "o", f.OutFile, "write the test sets as JSON to this file instead of printing them")
}

// loadTestSets reads the catalog from path, or collects it from Xray when path is empty.
// Only the test sets named by keys are collected when keys are given.
func loadTestSets(cmd *cobra.Command, xf *XrayCommandFlags, sf *flags.SourceFlags, path string, keys ...string) (testsets.Catalog, error) {
	if path != "" {
		return testsets.Load(path)
	}

	sourceMap, err := scrapeSourceMap(sf.SourceDir)
	if err != nil {
		return nil, err
	}
	client, err := xf.GetXrayClient()
	if err != nil {
		return nil, err
	}
	var catalog testsets.Catalog
	if len(keys) > 0 {
		catalog, err = testsets.CollectKeys(cmd.Context(), client, keys, sourceMap)
	} else {
		catalog, err = testsets.Collect(cmd.Context(), client, sourceMap)
	}
	if err != nil {
		return nil, err
	}
	log.Infof("collected %d test sets", len(catalog))
	return catalog, nil
}

func NewTestSetsCommand() *cobra.Command {
	f := NewTestSetsFlags()

	cmd := &cobra.Command{
		Use:   "testsets [KEY...]",
		Short: "List the test sets of the project with their tests and test sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.InFile != "" && len(args) > 0 {
				return errors.New("test set keys cannot be combined with --infile")
			}
			catalog, err := loadTestSets(cmd, f.XrayCommandFlags, f.SourceFlags, f.InFile, args...)
			if err != nil {
				return err
			}
			if f.OutFile != "" {
				return catalog.Save(f.OutFile)
			}
			return catalog.Print(os.Stdout)
		},
	}
	f.BindFlags(cmd.Flags())

	return cmd
}
