// Package version reports the build of the running binary. GitCommit and BuildDate are set
// at link time:
//
//	go build -ldflags "-X github.com/openshift/testgrade/pkg/version.GitCommit=$(git rev-parse HEAD)"
package version

import "runtime"

var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type Info struct {
	GitCommit string `json:"gitCommit" yaml:"gitCommit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

func Get() Info {
	return Info{
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
