// Package jira looks up Jira issue summaries and workflow statuses of tests and test plans.
package jira

import (
	"context"
	"fmt"
	"strings"

	"github.com/andygrunwald/go-jira"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const searchPageSize = 50

type Issue struct {
	Key     string
	Summary string
	Status  string
}

// Lookup queries Jira. A nil Lookup, or one without a client, finds nothing.
type Lookup struct {
	client *jira.Client
}

func NewLookup(client *jira.Client) *Lookup {
	return &Lookup{client: client}
}

func (l *Lookup) enabled() bool {
	return l != nil && l.client != nil
}

func fromJira(issue *jira.Issue) Issue {
	i := Issue{Key: issue.Key}
	if issue.Fields != nil {
		i.Summary = issue.Fields.Summary
		if issue.Fields.Status != nil {
			i.Status = issue.Fields.Status.Name
		}
	}
	return i
}

// Issue returns one issue. found is false when there is no Jira client.
func (l *Lookup) Issue(ctx context.Context, key string) (issue Issue, found bool, err error) {
	if !l.enabled() {
		return Issue{}, false, nil
	}
	ji, _, err := l.client.Issue.GetWithContext(ctx, key, &jira.GetQueryOptions{Fields: "summary,status"})
	if err != nil {
		return Issue{}, false, errors.Wrapf(err, "could not get jira issue %s", key)
	}
	return fromJira(ji), true, nil
}

// Issues returns the issues with the given keys, searching in batches.
func (l *Lookup) Issues(ctx context.Context, keys []string) (map[string]Issue, error) {
	issues := map[string]Issue{}
	if !l.enabled() {
		return issues, nil
	}

	for start := 0; start < len(keys); start += searchPageSize {
		end := min(start+searchPageSize, len(keys))
		jql := fmt.Sprintf("key in (%s)", strings.Join(keys[start:end], ","))
		found, _, err := l.client.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{
			MaxResults: searchPageSize,
			Fields:     []string{"summary", "status"},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "could not search jira issues %s", jql)
		}
		for i := range found {
			issue := fromJira(&found[i])
			issues[issue.Key] = issue
		}
	}
	log.Debugf("found %d of %d jira issues", len(issues), len(keys))
	return issues, nil
}
