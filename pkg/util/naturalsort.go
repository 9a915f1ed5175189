package util

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// NaturalSort sorts strings so that embedded numbers compare by value, "pool2" before "pool10".
func NaturalSort(s []string) {
	c := collate.New(language.Und, collate.Numeric)
	sort.SliceStable(s, func(i, j int) bool {
		return c.CompareString(s[i], s[j]) < 0
	})
}

// NaturalLess returns a comparison function using numeric collation. The returned function is
// not safe for concurrent use.
func NaturalLess() func(a, b string) bool {
	c := collate.New(language.Und, collate.Numeric)
	return func(a, b string) bool {
		return c.CompareString(a, b) < 0
	}
}

// JiraKeyNumber is the issue number of a Jira key, 123 for "MQ-123". Keys without a numeric
// suffix return -1.
func JiraKeyNumber(key string) int {
	idx := strings.LastIndex(key, "-")
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return -1
	}
	return n
}

// SortJiraKeys orders keys by issue number, so MQ-9 precedes MQ-10.
func SortJiraKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ni, nj := JiraKeyNumber(keys[i]), JiraKeyNumber(keys[j])
		if ni != nj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})
}
