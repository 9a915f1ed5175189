package main

import (
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openshift/testgrade/pkg/flags"
	"github.com/openshift/testgrade/pkg/scraper"
)

type ScrapeFlags struct {
	SourceFlags *flags.SourceFlags

	OutFile string
}

func NewScrapeFlags() *ScrapeFlags {
	return &ScrapeFlags{
		SourceFlags: flags.NewSourceFlags(),
	}
}

func (f *ScrapeFlags) BindFlags(fs *pflag.FlagSet) {
	f.SourceFlags.BindFlags(fs)
	fs.StringVarP(&f.OutFile, "outfile", "o", f.OutFile, "write the definition to source map as JSON to this file instead of printing it")
}

func NewScrapeCommand() *cobra.Command {
	f := NewScrapeFlags()

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Map test definitions to the source files declaring them",
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceMap, err := scrapeSourceMap(f.SourceFlags.SourceDir)
			if err != nil {
				return err
			}
			log.Infof("scraped %d test definitions from %s", len(sourceMap), f.SourceFlags.SourceDir)

			if f.OutFile != "" {
				return scraper.SaveSourceMap(f.OutFile, sourceMap)
			}
			defs := make([]string, 0, len(sourceMap))
			for def := range sourceMap {
				defs = append(defs, def)
			}
			sort.Strings(defs)
			for _, def := range defs {
				fmt.Fprintf(os.Stdout, "%s: %s\n", def, sourceMap[def])
			}
			return nil
		},
	}
	f.BindFlags(cmd.Flags())

	return cmd
}
