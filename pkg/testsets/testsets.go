package testsets

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	xrayv1 "github.com/openshift/testgrade/pkg/apis/xray/v1"
	"github.com/openshift/testgrade/pkg/cache/jsonfile"
	"github.com/openshift/testgrade/pkg/scraper"
	"github.com/openshift/testgrade/pkg/util"
)

// Lister is the part of the Xray client needed to walk test sets.
type Lister interface {
	ListTestSets(ctx context.Context) (map[string]xrayv1.TestSet, error)
	GetTestsInTestSet(ctx context.Context, issueID string) (map[string]xrayv1.Test, error)
}

// Resolver is the part of the Xray client needed to fetch test sets by Jira key.
type Resolver interface {
	ResolveTestSet(ctx context.Context, jiraKey string) (string, error)
	GetTestsInTestSet(ctx context.Context, issueID string) (map[string]xrayv1.Test, error)
}

// Source is where the tests of a test set are implemented.
type Source struct {
	Location  string `json:"location"`
	ClassName string `json:"classname"`
}

type Entry struct {
	xrayv1.TestSet
	Tests   map[string]xrayv1.Test `json:"tests"`
	Sources []Source               `json:"sources"`
}

// Catalog maps test set keys to their tests and sources.
type Catalog map[string]Entry

func NewEntry(set xrayv1.TestSet, tests map[string]xrayv1.Test, sourceMap map[string]string) Entry {
	entry := Entry{TestSet: set, Tests: tests, Sources: []Source{}}
	seen := map[Source]bool{}
	for _, key := range Keys(tests) {
		def := tests[key].Definition()
		location, ok := sourceMap[def]
		if !ok {
			continue
		}
		src := Source{Location: location, ClassName: scraper.ClassName(def)}
		if seen[src] {
			continue
		}
		seen[src] = true
		entry.Sources = append(entry.Sources, src)
	}
	return entry
}

// Collect fetches every test set of the project together with its tests.
func Collect(ctx context.Context, lister Lister, sourceMap map[string]string) (Catalog, error) {
	sets, err := lister.ListTestSets(ctx)
	if err != nil {
		return nil, errors.WithMessage(err, "listing test sets")
	}
	catalog := make(Catalog, len(sets))
	for _, key := range Keys(sets) {
		set := sets[key]
		tests, err := lister.GetTestsInTestSet(ctx, set.IssueID)
		if err != nil {
			return nil, errors.WithMessagef(err, "test set %s", key)
		}
		log.Debugf("test set %s: %d tests", key, len(tests))
		catalog[key] = NewEntry(set, tests, sourceMap)
	}
	return catalog, nil
}

// CollectKeys fetches the named test sets only. Entries carry the set key and issue id but
// no summary.
func CollectKeys(ctx context.Context, resolver Resolver, keys []string, sourceMap map[string]string) (Catalog, error) {
	catalog := make(Catalog, len(keys))
	for _, key := range keys {
		id, err := resolver.ResolveTestSet(ctx, key)
		if err != nil {
			return nil, err
		}
		tests, err := resolver.GetTestsInTestSet(ctx, id)
		if err != nil {
			return nil, errors.WithMessagef(err, "test set %s", key)
		}
		log.Debugf("test set %s: %d tests", key, len(tests))
		catalog[key] = NewEntry(xrayv1.TestSet{IssueID: id, Jira: xrayv1.JiraFields{Key: key}}, tests, sourceMap)
	}
	return catalog, nil
}

func Load(path string) (Catalog, error) {
	catalog := Catalog{}
	found, err := jsonfile.Load(path, &catalog)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("test sets file %s does not exist", path)
	}
	return catalog, nil
}

func (c Catalog) Save(path string) error {
	return jsonfile.Save(path, c)
}

// ClassNames maps each source class name to the test set implementing it. When several
// test sets share a class name the one with the highest key wins.
func (c Catalog) ClassNames() map[string]string {
	byClass := map[string]string{}
	for _, key := range Keys(c) {
		for _, src := range c[key].Sources {
			byClass[src.ClassName] = key
		}
	}
	return byClass
}

func (c Catalog) Print(w io.Writer) error {
	for _, key := range Keys(c) {
		entry := c[key]
		sources := make([]string, 0, len(entry.Sources))
		for _, src := range entry.Sources {
			sources = append(sources, fmt.Sprintf("%s (%s)", src.Location, src.ClassName))
		}
		_, err := fmt.Fprintf(w, "%s: %s\n\t sources: [%s]\n\t tests: [%s]\n",
			key, entry.Jira.Summary, strings.Join(sources, ", "), strings.Join(Keys(entry.Tests), " "))
		if err != nil {
			return err
		}
	}
	return nil
}

// Keys returns the keys of m in Jira issue number order.
func Keys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	util.SortJiraKeys(keys)
	return keys
}
