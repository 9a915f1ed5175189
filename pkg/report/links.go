package report

import (
	"fmt"
	"net/url"
	"strings"
)

const DefaultJiraURL = "https://mayadata.atlassian.net"

// LinkBuilder builds links to Jira issues and Xray execution pages.
type LinkBuilder struct {
	BaseURL string
}

func (l LinkBuilder) base() string {
	if l.BaseURL == "" {
		return DefaultJiraURL
	}
	return strings.TrimSuffix(l.BaseURL, "/")
}

func (l LinkBuilder) IssueLink(key string) string {
	return fmt.Sprintf("%s/browse/%s", l.base(), url.PathEscape(key))
}

// RunLink points at the run of a test inside a test execution.
func (l LinkBuilder) RunLink(execKey, testKey string) string {
	q := url.Values{}
	q.Set("ac.testExecIssueKey", execKey)
	q.Set("ac.testIssueKey", testKey)
	return fmt.Sprintf("%s/plugins/servlet/ac/com.xpandit.plugins.xray/execution-page?%s", l.base(), q.Encode())
}
