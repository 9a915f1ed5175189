package xrayclient

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// CollectStats describes how a paginated query went.
type CollectStats struct {
	Requests  int
	Total     int
	Collected int
	// Aborted is set when an empty page ended the collection before total was reached.
	Aborted bool
}

// Collect drains a paginated query. Variables must contain integer start and limit values.
// An aborted collection is not an error: the partial results are returned and
// CollectStats.Aborted is set.
func (c *Client) Collect(ctx context.Context, q Query) ([]json.RawMessage, CollectStats, error) {
	start := time.Now()
	op := operationLabel(q)

	fetch := func(ctx context.Context, variables map[string]interface{}) (gjson.Result, error) {
		body, err := c.post(ctx, q, variables)
		if err != nil {
			return gjson.Result{}, err
		}
		return responseData(body)
	}

	st, err := collectPages(ctx, q.Variables, fetch)
	if err != nil {
		return nil, CollectStats{}, errors.Wrapf(err, "collecting %s", op)
	}

	stats := CollectStats{
		Requests:  st.requests,
		Total:     st.total,
		Collected: len(st.results),
		Aborted:   st.abort,
	}
	collectedTotal.WithLabelValues(op, strconv.FormatBool(st.abort)).Add(float64(len(st.results)))
	if st.abort {
		log.Debugf("%s: collection aborted after %d of %d results", op, len(st.results), st.total)
	}
	log.Debugf("%s: collected %d results in %d requests after %+v", op, len(st.results), st.requests, time.Since(start))
	return st.results, stats, nil
}

// collectAs collects a paginated query and decodes every result into T.
func collectAs[T any](ctx context.Context, c *Client, q Query) ([]T, error) {
	raw, _, err := c.Collect(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s result", operationLabel(q))
		}
		items = append(items, item)
	}
	return items, nil
}
