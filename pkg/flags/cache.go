package flags

import (
	"path/filepath"

	"github.com/spf13/pflag"
)

// CacheFlags holds the location of the JSON file cache of collected Xray data.
type CacheFlags struct {
	CacheDir string
	Collect  bool
	Refresh  bool
}

func NewCacheFlags() *CacheFlags {
	return &CacheFlags{
		CacheDir: filepath.Join("artifacts", "xray-report", "cache"),
	}
}

func (f *CacheFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.CacheDir, "cachedir", f.CacheDir, "directory to cache JSON formatted results")
	fs.BoolVar(&f.Collect, "collect", f.Collect, "collect results from Xray, test execution results already cached are not collected again")
	fs.BoolVar(&f.Refresh, "refresh", f.Refresh, "collect results from Xray including test executions already cached")
}

// ShouldCollect is true when anything has to be fetched from Xray.
func (f *CacheFlags) ShouldCollect() bool {
	return f.Collect || f.Refresh
}
