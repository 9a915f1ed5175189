package flags

import (
	"net/http"
	"os"
	"strings"

	"github.com/andygrunwald/go-jira"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	v1 "github.com/openshift/testgrade/pkg/apis/config/v1"
	"github.com/openshift/testgrade/pkg/report"
)

// JiraFlags holds the Jira instance that test issues live in.
type JiraFlags struct {
	JiraTokenFile string
	JiraURL       string
}

func NewJiraFlags() *JiraFlags {
	return &JiraFlags{}
}

func (f *JiraFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.JiraTokenFile,
		"jira-token-file",
		f.JiraTokenFile,
		"file containing Jira token")
	fs.StringVar(&f.JiraURL, "jira-url", f.JiraURL, "Jira URL (default "+report.DefaultJiraURL+")")
}

// URL returns the Jira base URL from the flags, the configuration file or the default.
func (f *JiraFlags) URL(config v1.JiraConfig) string {
	return firstNonEmpty(f.JiraURL, config.URL, report.DefaultJiraURL)
}

type bearerAuthTransport struct {
	Token     string
	Transport http.RoundTripper
}

func (bat *bearerAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Add("Authorization", "Bearer "+bat.Token)
	return bat.transport().RoundTrip(req)
}

func (bat *bearerAuthTransport) transport() http.RoundTripper {
	if bat.Transport != nil {
		return bat.Transport
	}
	return http.DefaultTransport
}

// GetJiraClient returns a Jira client, or nil when no token is available.
func (f *JiraFlags) GetJiraClient(config v1.JiraConfig) (*jira.Client, error) {
	var jiraToken string

	if f.JiraTokenFile != "" {
		tokenBytes, err := os.ReadFile(f.JiraTokenFile)
		if err != nil {
			log.WithError(err).Error("failed to read jira token file")
			return nil, err
		}
		jiraToken = strings.TrimSpace(string(tokenBytes))
	}

	if jiraToken == "" {
		jiraToken = os.Getenv("JIRA_TOKEN")
	}

	if jiraToken == "" {
		log.Debug("JIRA_TOKEN not set and no token file provided, issue summaries are taken from Xray")
		return nil, nil
	}

	httpClient := &http.Client{Transport: &bearerAuthTransport{Token: jiraToken}}

	return jira.NewClient(httpClient, f.URL(config))
}
