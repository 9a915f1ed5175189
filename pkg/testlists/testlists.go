// Package testlists expands named test profiles from a YAML list definition file into the
// ordered list of tests a CI job should run.
package testlists

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	Install   = "install"
	Uninstall = "uninstall"
)

var ErrUnknownProfile = errors.New("unknown profile")

type Metadata struct {
	// RecordedDurations holds the last measured duration of each test, in seconds.
	RecordedDurations map[string]float64 `yaml:"recorded_durations"`
}

type Definitions struct {
	Metadata     Metadata            `yaml:"metadata"`
	TestProfiles map[string][]string `yaml:"testprofiles"`
}

type Options struct {
	SortAlpha    bool
	SortDuration bool
	// Install and Uninstall bracket the whole list.
	Install   bool
	Uninstall bool
	// InstallUninstall brackets every test.
	InstallUninstall bool
}

func (o Options) Validate() error {
	if o.InstallUninstall && (o.Install || o.Uninstall) {
		return errors.New("install-uninstall per test cannot be combined with install or uninstall")
	}
	return nil
}

func Parse(data []byte) (*Definitions, error) {
	defs := &Definitions{}
	if err := yaml.Unmarshal(data, defs); err != nil {
		return nil, errors.Wrap(err, "parsing test list definitions")
	}
	return defs, nil
}

func Load(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return Parse(data)
}

// Profile returns the tests of the named profile arranged according to opts. Sorting by
// duration is applied after alphabetical sorting and orders the slowest tests first.
func (d *Definitions) Profile(name string, opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	profile, ok := d.TestProfiles[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProfile, "%q", name)
	}
	tests := append([]string{}, profile...)

	if opts.SortAlpha {
		sort.Strings(tests)
	}
	if opts.SortDuration {
		durations := d.Metadata.RecordedDurations
		sort.SliceStable(tests, func(i, j int) bool {
			return durations[tests[i]] > durations[tests[j]]
		})
	}

	if opts.InstallUninstall {
		for i, t := range tests {
			tests[i] = strings.Join([]string{Install, t, Uninstall}, ",")
		}
	}
	if opts.Install {
		tests = append([]string{Install}, tests...)
	}
	if opts.Uninstall {
		tests = append(tests, Uninstall)
	}
	return tests, nil
}
