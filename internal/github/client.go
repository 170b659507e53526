// Package github checks GitHub repositories and downloads their README.md
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shurcooL/githubv4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/stacklok/readmesync/internal/httpclient"
	"github.com/stacklok/readmesync/internal/readmesync"
)

const (
	// DefaultWebURL is the GitHub web front end used for anonymous existence checks
	DefaultWebURL = "https://github.com"
	// DefaultRawURL serves raw file contents
	DefaultRawURL = "https://raw.githubusercontent.com"
	// DefaultGraphQLURL is the GraphQL API used when a token is configured
	DefaultGraphQLURL = "https://api.github.com/graphql"

	readmeFile = "README.md"
)

// Client implements readmesync.RepositoryChecker and readmesync.ReadmeFetcher
type Client struct {
	http    httpclient.Client
	graphql *githubv4.Client

	webURL string
	rawURL string
}

var (
	_ readmesync.RepositoryChecker = (*Client)(nil)
	_ readmesync.ReadmeFetcher     = (*Client)(nil)
)

type options struct {
	token      string
	webURL     string
	rawURL     string
	graphqlURL string
	timeout    time.Duration
	base       *http.Client
}

// Option configures the GitHub client
type Option func(*options)

// WithToken authenticates raw fetches and switches existence checks to the GraphQL API
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithWebURL overrides DefaultWebURL
func WithWebURL(u string) Option {
	return func(o *options) {
		o.webURL = u
	}
}

// WithRawURL overrides DefaultRawURL
func WithRawURL(u string) Option {
	return func(o *options) {
		o.rawURL = u
	}
}

// WithGraphQLURL overrides DefaultGraphQLURL
func WithGraphQLURL(u string) Option {
	return func(o *options) {
		o.graphqlURL = u
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithHTTPClient replaces the traced default transport
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.base = client
	}
}

// NewClient creates a GitHub client
func NewClient(opts ...Option) *Client {
	o := &options{
		webURL:     DefaultWebURL,
		rawURL:     DefaultRawURL,
		graphqlURL: DefaultGraphQLURL,
		timeout:    httpclient.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	base := o.base
	if base == nil {
		base = &http.Client{
			Timeout:   o.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	c := &Client{
		webURL: strings.TrimSuffix(o.webURL, "/"),
		rawURL: strings.TrimSuffix(o.rawURL, "/"),
	}

	if o.token == "" {
		c.http = httpclient.NewClient(base)
		return c
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.token})
	authed := oauth2.NewClient(context.WithValue(context.Background(), oauth2.HTTPClient, base), src)
	authed.Timeout = base.Timeout

	c.http = httpclient.NewClient(authed)
	c.graphql = githubv4.NewEnterpriseClient(o.graphqlURL, authed)
	return c
}

// Exists reports whether repo resolves on GitHub. A 404 or an unresolved GraphQL
// repository is (false, nil); transport failures are returned as errors.
func (c *Client) Exists(ctx context.Context, repo readmesync.RepoRef) (bool, error) {
	if c.graphql != nil {
		return c.existsGraphQL(ctx, repo)
	}

	target := c.webURL + "/" + escapeRepo(repo)
	_, err := c.http.Do(ctx, http.MethodHead, target, nil, httpclient.WithHeader("Accept", "text/html"))
	switch {
	case err == nil:
		return true, nil
	case httpclient.IsNotFound(err):
		slog.DebugContext(ctx, "GitHub repository not found", "repository", repo.String())
		return false, nil
	default:
		return false, fmt.Errorf("failed to check repository %s: %w", repo, err)
	}
}

type repository struct {
	ID    string
	Owner struct {
		Login string
	}
	Name string
}

func (c *Client) existsGraphQL(ctx context.Context, repo readmesync.RepoRef) (bool, error) {
	var query struct {
		Repository *repository `graphql:"repository(owner: $owner, name: $name)"`
	}

	start := time.Now()
	err := c.graphql.Query(ctx, &query, map[string]any{
		"owner": githubv4.String(repo.Owner),
		"name":  githubv4.String(repo.Name),
	})
	slog.DebugContext(ctx, "Executed GitHub repository query",
		"repository", repo.String(),
		"elapsed", time.Since(start),
		"error", err,
	)
	if err != nil {
		if strings.Contains(err.Error(), "Could not resolve to a Repository") {
			return false, nil
		}
		return false, fmt.Errorf("failed to query repository %s: %w", repo, err)
	}

	return query.Repository != nil && query.Repository.ID != "", nil
}

// FetchReadme downloads README.md at the root of branch. Any non-2xx response is an error.
func (c *Client) FetchReadme(ctx context.Context, repo readmesync.RepoRef, branch string) ([]byte, error) {
	target := fmt.Sprintf("%s/%s/%s/%s", c.rawURL, escapeRepo(repo), escapeBranch(branch), readmeFile)

	data, err := c.http.Get(ctx, target, httpclient.WithHeader("Accept", "text/plain"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s from %s@%s: %w", readmeFile, repo, branch, err)
	}

	slog.DebugContext(ctx, "Fetched README", "repository", repo.String(), "branch", branch, "bytes", len(data))
	return data, nil
}

func escapeRepo(repo readmesync.RepoRef) string {
	return url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name)
}

// escapeBranch escapes each segment so branches like feature/x keep their slashes
func escapeBranch(branch string) string {
	segments := strings.Split(branch, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
