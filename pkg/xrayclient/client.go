// Package xrayclient queries the Xray cloud GraphQL API for tests, test plans, test sets,
// test executions and test runs.
//
// A Client is constructed once per process. Its bearer credential is obtained lazily on the
// first query, cached for the lifetime of the client and never refreshed; callers seeing
// authorization failures re-authenticate explicitly with Reauthenticate.
package xrayclient

import (
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultAuthURL    = "https://xray.cloud.xpand-it.com/api/v1/authenticate"
	DefaultGraphQLURL = "https://xray.cloud.xpand-it.com/api/v2/graphql"
	DefaultProject    = "MQ"
	DefaultPageSize   = 50
)

type Client struct {
	AuthURL    string
	GraphQLURL string
	Project    string
	PageSize   int
	// HTTPClient is the unauthenticated base client; the bearer transport wraps it.
	HTTPClient *http.Client

	credentials Credentials
	token       string
	authed      *http.Client
}

// Option is a functional option for configuring the client
type Option func(*Client)

func WithAuthURL(url string) Option {
	return func(c *Client) {
		c.AuthURL = strings.TrimSuffix(url, "/")
	}
}

func WithGraphQLURL(url string) Option {
	return func(c *Client) {
		c.GraphQLURL = strings.TrimSuffix(url, "/")
	}
}

// WithProject sets the Jira project used in JQL queries
func WithProject(project string) Option {
	return func(c *Client) {
		c.Project = project
	}
}

// WithCredentials sets the client id and secret, bypassing the credentials file and environment
func WithCredentials(clientID, clientSecret string) Option {
	return func(c *Client) {
		c.credentials = Credentials{ClientID: clientID, ClientSecret: clientSecret}
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = httpClient
	}
}

func WithPageSize(size int) Option {
	return func(c *Client) {
		c.PageSize = size
	}
}

// New creates an Xray client. Credentials not given as options are resolved with ResolveCredentials.
func New(opts ...Option) (*Client, error) {
	client := &Client{
		AuthURL:    DefaultAuthURL,
		GraphQLURL: DefaultGraphQLURL,
		Project:    DefaultProject,
		PageSize:   DefaultPageSize,
		HTTPClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.credentials.ClientID == "" || client.credentials.ClientSecret == "" {
		creds, err := ResolveCredentials()
		if err != nil {
			return nil, err
		}
		client.credentials = creds
	}
	if client.PageSize <= 0 {
		return nil, errors.Errorf("invalid page size %d", client.PageSize)
	}

	return client, nil
}
