package xrayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// authenticate obtains the bearer token once; later calls are no-ops.
func (c *Client) authenticate(ctx context.Context) error {
	if c.authed != nil {
		return nil
	}
	return c.Reauthenticate(ctx)
}

// Reauthenticate exchanges the client credentials for a fresh bearer token and replaces the
// cached one.
func (c *Client) Reauthenticate(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"client_id":     c.credentials.ClientID,
		"client_secret": c.credentials.ClientSecret,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.AuthURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to create authentication request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to authenticate")
	}
	defer resp.Body.Close()
	requestsTotal.WithLabelValues("authenticate", strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read authentication response")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("authentication failed %d, %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	// the token is returned as a JSON string
	var token string
	if err := json.Unmarshal(body, &token); err != nil {
		token = strings.TrimSpace(string(body))
	}
	if token == "" {
		return errors.New("authentication returned an empty token")
	}

	c.token = token
	base := context.WithValue(context.Background(), oauth2.HTTPClient, c.HTTPClient)
	c.authed = oauth2.NewClient(base, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	log.Debug("authenticated with xray")
	return nil
}
