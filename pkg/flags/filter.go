package flags

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/openshift/testgrade/pkg/util"
)

// FilterFlags selects test runs and tests by status and finish date.
type FilterFlags struct {
	Statuses []string
	Since    string
}

func NewFilterFlags() *FilterFlags {
	return &FilterFlags{}
}

func (f *FilterFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringSliceVar(&f.Statuses, "status", f.Statuses, "statuses to include, prefix a status with ! to exclude it")
	fs.StringVarP(&f.Since, "cutoff", "D", f.Since,
		"only runs finished on or after this date: YYYY-MM-DD, DD-MM-YY, DD-MM-YYYY, or Nd / Nw days or weeks before today")
}

func (f *FilterFlags) StatusFilter() util.StatusFilter {
	return util.NewStatusFilter(f.Statuses)
}

// Cutoff returns the cutoff in epoch milliseconds, 0 when unset.
func (f *FilterFlags) Cutoff(now time.Time) (int64, error) {
	if f.Since == "" {
		return 0, nil
	}
	return util.ParseCutoff(f.Since, now)
}
