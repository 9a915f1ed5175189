package flags

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/openshift/testgrade/pkg/apis/config/v1"
	"github.com/openshift/testgrade/pkg/report"
	"github.com/openshift/testgrade/pkg/xrayclient"
)

func TestXrayFlags(t *testing.T) {
	f := NewXrayFlags()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--project", "OP", "--page-size", "10"}))

	opts, err := f.Options(v1.XrayConfig{Project: "CFG", GraphQLURL: "https://xray.example.com/graphql/"})
	require.NoError(t, err)
	opts = append(opts, xrayclient.WithCredentials("id", "secret"))

	client, err := xrayclient.New(opts...)
	require.NoError(t, err)
	assert.Equal(t, "OP", client.Project)
	assert.Equal(t, 10, client.PageSize)
	assert.Equal(t, "https://xray.example.com/graphql", client.GraphQLURL)
	assert.Equal(t, xrayclient.DefaultAuthURL, client.AuthURL)
}

func TestXrayFlagsCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "creds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("client_id: id\nclient_secret: secret\n"), 0o600))

	f := NewXrayFlags()
	f.CredentialsFile = path
	client, err := f.GetXrayClient(v1.XrayConfig{})
	require.NoError(t, err)
	assert.Equal(t, xrayclient.DefaultProject, client.Project)
}

func TestReportFlags(t *testing.T) {
	f := NewReportFlags()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--columns", "10", "--testenvs", "k8s,nvme"}))
	require.NoError(t, f.Validate())

	config := v1.ReportConfig{SampleDepth: 7, Columns: 30, SetupTeardown: []string{"Cleanup"}, TestEnvironments: []string{"cfg"}}
	opts := f.Options(config, "https://jira.example.com")
	assert.Equal(t, 10, opts.Columns)
	assert.Equal(t, 7, opts.SampleDepth)
	assert.Equal(t, uint(report.DefaultWeightBase), opts.WeightBase)
	assert.True(t, opts.SetupTeardown.Has("Cleanup"))
	assert.False(t, opts.SetupTeardown.Has("BeforeSuite"))
	assert.Equal(t, "https://jira.example.com/browse/MQ-1", opts.Links.IssueLink("MQ-1"))
	assert.Equal(t, []string{"k8s", "nvme"}, f.DefaultEnvironments(config))

	f.Format = "pdf"
	assert.Error(t, f.Validate())
}

func TestReportFlagsDefaultEnvironments(t *testing.T) {
	tests := []struct {
		name     string
		flags    []string
		config   v1.ReportConfig
		expected []string
	}{
		{name: "flag wins", flags: []string{"k8s"}, config: v1.ReportConfig{TestEnvironments: []string{"cfg"}}, expected: []string{"k8s"}},
		{name: "config", config: v1.ReportConfig{TestEnvironments: []string{"cfg"}}, expected: []string{"cfg"}},
		{name: "built in", expected: report.DefaultTestEnvironments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewReportFlags()
			f.TestEnvironments = tt.flags
			assert.Equal(t, tt.expected, f.DefaultEnvironments(tt.config))
		})
	}
}

func TestFilterFlags(t *testing.T) {
	f := NewFilterFlags()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--status", "PASSED,!FAILED", "-D", "1w"}))

	filter := f.StatusFilter()
	assert.True(t, filter.Match("PASSED"))
	assert.False(t, filter.Match("FAILED"))

	now := time.Date(2022, 4, 15, 13, 0, 0, 0, time.UTC)
	cutoff, err := f.Cutoff(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 4, 8, 0, 0, 0, 0, time.UTC).UnixMilli(), cutoff)

	assert.Equal(t, int64(0), func() int64 { c, _ := NewFilterFlags().Cutoff(now); return c }())
}

func TestJiraFlags(t *testing.T) {
	f := NewJiraFlags()
	assert.Equal(t, report.DefaultJiraURL, f.URL(v1.JiraConfig{}))
	assert.Equal(t, "https://cfg", f.URL(v1.JiraConfig{URL: "https://cfg"}))
	f.JiraURL = "https://flag"
	assert.Equal(t, "https://flag", f.URL(v1.JiraConfig{URL: "https://cfg"}))

	t.Setenv("JIRA_TOKEN", "")
	client, err := NewJiraFlags().GetJiraClient(v1.JiraConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)

	t.Setenv("JIRA_TOKEN", "token")
	client, err = NewJiraFlags().GetJiraClient(v1.JiraConfig{})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
