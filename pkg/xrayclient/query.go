package xrayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Query is a GraphQL query. Text is the operation without the leading "query" keyword.
type Query struct {
	Text          string
	Variables     map[string]interface{}
	OperationName string
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// post sends one GraphQL request and returns the raw response body. Any non-200 status is an
// error; rate limiting (429) is not retried.
func (c *Client) post(ctx context.Context, q Query, variables map[string]interface{}) ([]byte, error) {
	if q.Text == "" {
		return nil, errors.New("empty query")
	}
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(graphqlRequest{
		Query:         "query " + q.Text,
		Variables:     variables,
		OperationName: q.OperationName,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request body")
	}
	log.Tracef("post data = %s", payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GraphQLURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.authed.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute request")
	}
	defer resp.Body.Close()
	requestsTotal.WithLabelValues(operationLabel(q), strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		err := errors.Errorf("request failed %d, %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		log.Trace(err)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}
	return body, nil
}

// responseData extracts the "data" member of a GraphQL response. Reported GraphQL errors are logged.
func responseData(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.New("response is not valid JSON")
	}
	for _, e := range gjson.GetBytes(body, "errors").Array() {
		log.Warnf("graphql error: %s", e.Get("message").String())
	}
	data := gjson.GetBytes(body, "data")
	if !data.IsObject() {
		return gjson.Result{}, errors.New("response carries no data")
	}
	return data, nil
}

// Query runs a single, non paginated query and decodes its data member into out.
func (c *Client) Query(ctx context.Context, q Query, out interface{}) error {
	body, err := c.post(ctx, q, q.Variables)
	if err != nil {
		return err
	}
	data, err := responseData(body)
	if err != nil {
		return errors.Wrapf(err, "query %s", operationLabel(q))
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal([]byte(data.Raw), out), "failed to decode response")
}

func operationLabel(q Query) string {
	if q.OperationName != "" {
		return q.OperationName
	}
	if name, ok := operationName(q.Text); ok {
		return name
	}
	return "anonymous"
}
