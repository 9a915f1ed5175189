package xrayclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeXray struct {
	authCalls  int32
	queries    []string
	authStatus int
	// respond returns the data member for a query, or a status code to fail with
	respond func(body gjson.Result) (string, int)
}

func (f *fakeXray) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/authenticate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.authCalls, 1)
		if f.authStatus != 0 {
			w.WriteHeader(f.authStatus)
			return
		}
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "id", gjson.GetBytes(body, "client_id").String())
		assert.Equal(t, "secret", gjson.GetBytes(body, "client_secret").String())
		fmt.Fprint(w, `"the-token"`)
	})
	mux.HandleFunc("/api/v2/graphql", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer the-token", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		parsed := gjson.ParseBytes(body)
		f.queries = append(f.queries, parsed.Get("query").String())
		data, status := f.respond(parsed)
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		fmt.Fprintf(w, `{"data":%s}`, data)
	})
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, f *fakeXray) *Client {
	srv := f.server(t)
	t.Cleanup(srv.Close)
	c, err := New(
		WithAuthURL(srv.URL+"/api/v1/authenticate"),
		WithGraphQLURL(srv.URL+"/api/v2/graphql"),
		WithCredentials("id", "secret"),
		WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func TestCollectOverHTTP(t *testing.T) {
	f := &fakeXray{}
	f.respond = func(body gjson.Result) (string, int) {
		start := int(body.Get("variables.start").Int())
		assert.Equal(t, "project = MQ", body.Get("variables.jql").String())
		var items []string
		for i := start; i < start+2 && i < 5; i++ {
			items = append(items, fmt.Sprintf(`{"issueId":"%d","jira":{"key":"MQ-%d","summary":"test %d"},"unstructured":"A.b t%d"}`, i, i, i, i))
		}
		return fmt.Sprintf(`{"getTests":{"total":5,"start":%d,"limit":2,"results":[%s]}}`, start, strings.Join(items, ",")), 0
	}
	c := newTestClient(t, f)
	c.PageSize = 2

	raw, stats, err := c.Collect(context.Background(), Query{Text: listTestsQuery, Variables: c.projectVariables()})
	require.NoError(t, err)
	assert.Len(t, raw, 5)
	assert.Equal(t, CollectStats{Requests: 3, Total: 5, Collected: 5}, stats)
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.authCalls), "token must be cached")
	for _, q := range f.queries {
		assert.True(t, strings.HasPrefix(q, "query \nListTests("))
	}

	tests, err := c.ListTests(context.Background())
	require.NoError(t, err)
	assert.Len(t, tests, 5)
	assert.Equal(t, "A.b t3", tests["MQ-3"].Definition())
	assert.Equal(t, int32(1), atomic.LoadInt32(&f.authCalls))

	require.NoError(t, c.Reauthenticate(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&f.authCalls))
}

func TestCollectFailsOnStatus(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := &fakeXray{respond: func(gjson.Result) (string, int) { return "", status }}
			c := newTestClient(t, f)

			_, _, err := c.Collect(context.Background(), Query{Text: listTestsQuery, Variables: c.projectVariables()})
			require.Error(t, err)
			assert.Contains(t, err.Error(), fmt.Sprintf("request failed %d", status))
			assert.Len(t, f.queries, 1, "requests are never retried")
		})
	}
}

func TestAuthenticationFailure(t *testing.T) {
	f := &fakeXray{authStatus: http.StatusUnauthorized, respond: func(gjson.Result) (string, int) { return "{}", 0 }}
	c := newTestClient(t, f)

	err := c.Query(context.Background(), Query{Text: getTestQuery}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed 401")
	assert.Empty(t, f.queries)
}

func TestResolveTestPlan(t *testing.T) {
	f := &fakeXray{respond: func(gjson.Result) (string, int) {
		return `{"getTestPlans":{"total":2,"start":0,"limit":50,"results":[
			{"issueId":"100","jira":{"key":"MQ-1","summary":"nightly"}},
			{"issueId":"200","jira":{"key":"MQ-2","summary":"weekly"}}]}}`, 0
	}}
	c := newTestClient(t, f)

	id, err := c.ResolveTestPlan(context.Background(), "MQ-2")
	require.NoError(t, err)
	assert.Equal(t, "200", id)

	_, err = c.ResolveTestPlan(context.Background(), "MQ-3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetTestExecutionRuns(t *testing.T) {
	f := &fakeXray{respond: func(body gjson.Result) (string, int) {
		assert.Equal(t, "exec-1", body.Get("variables.issueId").String())
		return `{"getTestExecution":{"issueId":"exec-1","testRuns":{"total":2,"start":0,"limit":50,"results":[
			{"id":"r1","unstructured":"A.b c","finishedOn":"2022-04-15T05:20:00.000Z","status":{"name":"PASSED"},"test":{"jira":{"key":"MQ-7"}},"results":[{"log":"ok"}]},
			{"id":"r2","unstructured":"A.b d","finishedOn":1650000000000,"status":{"name":"FAILED"},"test":{"jira":{"key":"MQ-8"}},"results":[]}]}}}`, 0
	}}
	c := newTestClient(t, f)

	runs, err := c.GetTestExecutionRuns(context.Background(), "exec-1")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, runs[0].FinishedOn, runs[1].FinishedOn)
	assert.Equal(t, "MQ-8", runs[1].Key())
	assert.True(t, runs[1].Failed())
}

func TestGetTestNotFound(t *testing.T) {
	f := &fakeXray{respond: func(gjson.Result) (string, int) { return `{"getTest":null}`, 0 }}
	c := newTestClient(t, f)

	_, err := c.GetTest(context.Background(), "42")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetTestsInAllTestSets(t *testing.T) {
	f := &fakeXray{respond: func(body gjson.Result) (string, int) {
		query := body.Get("query").String()
		switch {
		case strings.Contains(query, "ListTestSets("):
			return `{"getTestSets":{"total":2,"start":0,"limit":50,"results":[
				{"issueId":"s1","jira":{"key":"MQ-10"}},
				{"issueId":"s2","jira":{"key":"MQ-11"}}]}}`, 0
		case strings.Contains(query, "GetTestsInTestSet("):
			if body.Get("variables.issueId").String() == "s2" {
				return `{"getTestSet":{"issueId":"s2","tests":{"total":0,"start":0,"limit":50,"results":[]}}}`, 0
			}
			return `{"getTestSet":{"issueId":"s1","tests":{"total":1,"start":0,"limit":50,"results":[
				{"issueId":"t1","unstructured":"Pool.create","jira":{"key":"MQ-1"}}]}}}`, 0
		}
		t.Errorf("unexpected query %s", query)
		return "", 0
	}}
	c := newTestClient(t, f)

	all, err := c.GetTestsInAllTestSets(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Pool.create", all["MQ-10"]["MQ-1"].Definition())
	assert.Empty(t, all["MQ-11"])
}

func TestResolveTestSet(t *testing.T) {
	f := &fakeXray{respond: func(body gjson.Result) (string, int) {
		return `{"getTestSets":{"total":1,"start":0,"limit":50,"results":[{"issueId":"s1","jira":{"key":"MQ-10"}}]}}`, 0
	}}
	c := newTestClient(t, f)

	id, err := c.ResolveTestSet(context.Background(), "MQ-10")
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	_, err = c.ResolveTestSet(context.Background(), "MQ-11")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGetTestRunResult(t *testing.T) {
	f := &fakeXray{respond: func(body gjson.Result) (string, int) {
		if body.Get("variables.id").String() == "missing" {
			return `{"getTestRunById":null}`, 0
		}
		return `{"getTestRunById":{"results":[{"log":"first"},{"log":"second"}]}}`, 0
	}}
	c := newTestClient(t, f)

	results, err := c.GetTestRunResult(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, []string{results[0].Log, results[1].Log})

	_, err = c.GetTestRunResult(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadCredentialsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, credentialsFileName)

	_, found, err := LoadCredentialsFile(path)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, os.WriteFile(path, []byte("client_id: abc\nclient_secret: xyz\n"), 0o600))
	creds, found, err := LoadCredentialsFile(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Credentials{ClientID: "abc", ClientSecret: "xyz"}, creds)
}

func TestResolveCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(clientIDEnv, "env-id")
	t.Setenv(clientSecretEnv, "env-secret")

	creds, err := ResolveCredentials()
	require.NoError(t, err)
	assert.Equal(t, Credentials{ClientID: "env-id", ClientSecret: "env-secret"}, creds)

	t.Setenv(clientSecretEnv, "")
	_, err = ResolveCredentials()
	assert.Error(t, err)
}

func TestRequestBody(t *testing.T) {
	payload, err := json.Marshal(graphqlRequest{Query: "query X", Variables: map[string]interface{}{"start": 0}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"query X","variables":{"start":0}}`, string(payload))
}
