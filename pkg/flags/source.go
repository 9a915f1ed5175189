package flags

import (
	"path/filepath"

	"github.com/spf13/pflag"
)

// SourceFlags locates the test sources scraped for test definitions.
type SourceFlags struct {
	SourceDir string
}

func NewSourceFlags() *SourceFlags {
	return &SourceFlags{
		SourceDir: "src",
	}
}

func (f *SourceFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.SourceDir, "src", f.SourceDir, "directory holding one directory of Ginkgo tests per suite")
}

// SourceMapPath is the location of the scraped definition to source map inside dir.
func SourceMapPath(dir string) string {
	return filepath.Join(dir, "defs2src.json")
}
