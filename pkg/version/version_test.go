package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	GitCommit = "abc123"
	defer func() { GitCommit = "unknown" }()

	v := Get()
	assert.Equal(t, "abc123", v.GitCommit)
	assert.Equal(t, runtime.Version(), v.GoVersion)
	assert.Contains(t, v.Platform, runtime.GOOS)
}
