package xrayclient

import (
	"context"
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// pageFetcher issues one request with the given variables and returns the response data member.
type pageFetcher func(ctx context.Context, variables map[string]interface{}) (gjson.Result, error)

// collectState accumulates a paginated query. It is passed and returned by value, each page
// producing the next state.
type collectState struct {
	results []json.RawMessage
	total   int
	more    bool
	abort   bool

	start    int
	limit    int
	base     map[string]interface{}
	requests int
}

// variables returns a fresh variable set for the next request.
func (st collectState) variables() map[string]interface{} {
	vars := make(map[string]interface{}, len(st.base))
	for k, v := range st.base {
		vars[k] = v
	}
	vars["start"] = st.start
	vars["limit"] = st.limit
	return vars
}

// collectPages drains a paginated query. Pagination stops when every result announced by
// total has been collected, when total is zero, or when a page comes back empty. The last
// case is an abort: the results gathered so far are returned and the state is flagged.
func collectPages(ctx context.Context, variables map[string]interface{}, fetch pageFetcher) (collectState, error) {
	start, err := intVariable(variables, "start")
	if err != nil {
		return collectState{}, err
	}
	limit, err := intVariable(variables, "limit")
	if err != nil {
		return collectState{}, err
	}

	st := collectState{
		more:  true,
		start: start,
		limit: limit,
		base:  variables,
	}

	for st.more {
		vars := st.variables()
		log.Tracef("query variables %v", vars)
		data, err := fetch(ctx, vars)
		if err != nil {
			return st, err
		}
		st.requests++

		var matched bool
		st, matched = processData(st, data)
		if !matched {
			log.Debug("response carries no paginated results, stopping")
			st.more = false
			st.abort = true
		}
		st.more = st.more && len(st.results) < st.total && !st.abort
	}

	log.Tracef("total=%d len(results)=%d abort=%t requests=%d", st.total, len(st.results), st.abort, st.requests)
	return st, nil
}

// processData applies every page found in the response. A page is an object carrying a
// results member, either directly under a top level field or one level below it.
func processData(st collectState, data gjson.Result) (collectState, bool) {
	matched := false
	data.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			log.Tracef("ignoring %s", key.String())
			return true
		}
		if value.Get("results").Exists() {
			st = processResults(st, value)
			matched = true
			return true
		}
		value.ForEach(func(child, nested gjson.Result) bool {
			if nested.IsObject() && nested.Get("results").Exists() {
				st = processResults(st, nested)
				matched = true
			}
			return true
		})
		return true
	})
	return st, matched
}

// processResults applies one page. total and limit are read before results so the outcome
// does not depend on the order of the members in the response.
func processResults(st collectState, page gjson.Result) collectState {
	if total := page.Get("total"); total.Exists() {
		log.Tracef("got total = %s", total.Raw)
		st.total = int(total.Int())
		if st.total == 0 {
			st.more = false
			return st
		}
	}
	if limit := page.Get("limit"); limit.Exists() {
		log.Tracef("got limit = %s", limit.Raw)
		if l := int(limit.Int()); l < st.limit {
			st.limit = l
		}
	}

	items := page.Get("results").Array()
	if len(items) == 0 {
		log.Tracef("got 0 results total=%d len(results)=%d", st.total, len(st.results))
		st.more = false
		st.abort = true
		return st
	}
	for _, item := range items {
		st.results = append(st.results, json.RawMessage(item.Raw))
	}
	st.start += len(items)
	return st
}

func intVariable(variables map[string]interface{}, name string) (int, error) {
	v, ok := variables[name]
	if !ok {
		return 0, errors.Errorf("paginated query requires variable %q", name)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, errors.Errorf("variable %q must be an integer, got %v", name, v)
}
