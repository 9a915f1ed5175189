package util

import (
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// StatusFilter matches statuses against include and exclude lists.
type StatusFilter struct {
	Include sets.Set[string]
	Exclude sets.Set[string]
}

// NewStatusFilter parses statuses, a status prefixed with ! is excluded. Matching is case
// insensitive.
func NewStatusFilter(statuses []string) StatusFilter {
	f := StatusFilter{Include: sets.New[string](), Exclude: sets.New[string]()}
	for _, s := range statuses {
		s = strings.ToUpper(strings.TrimSpace(s))
		switch {
		case s == "" || s == "!":
		case strings.HasPrefix(s, "!"):
			f.Exclude.Insert(s[1:])
		default:
			f.Include.Insert(s)
		}
	}
	return f
}

// Match is true when status is not excluded and, with a non-empty include list, included.
func (f StatusFilter) Match(status string) bool {
	status = strings.ToUpper(status)
	if f.Exclude.Has(status) {
		return false
	}
	return f.Include.Len() == 0 || f.Include.Has(status)
}
