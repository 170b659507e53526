// Package dockerhub logs in to Docker Hub and updates repository descriptions
package dockerhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/stacklok/readmesync/internal/httpclient"
	"github.com/stacklok/readmesync/internal/readmesync"
)

// DefaultBaseURL is the Docker Hub API root
const DefaultBaseURL = "https://hub.docker.com/v2"

// ErrNoToken is returned when a login response carries no token
var ErrNoToken = errors.New("login response contains no token")

// Client implements readmesync.RegistryAuthenticator and readmesync.DescriptionPublisher
type Client struct {
	http    httpclient.Client
	baseURL string
}

var (
	_ readmesync.RegistryAuthenticator = (*Client)(nil)
	_ readmesync.DescriptionPublisher  = (*Client)(nil)
)

// Option configures the Docker Hub client
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient replaces the default traced client
func WithHTTPClient(client httpclient.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// NewClient creates a Docker Hub client whose requests time out after timeout
func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http:    httpclient.NewDefaultClient(timeout),
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type descriptionUpdate struct {
	FullDescription string `json:"full_description"`
}

// Login exchanges username and password for a JWT session
func (c *Client) Login(ctx context.Context, username, password string) (readmesync.Session, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return readmesync.Session{}, fmt.Errorf("failed to encode login request: %w", err)
	}

	resp, err := c.http.Do(ctx, http.MethodPost, c.baseURL+"/users/login/", body)
	if err != nil {
		return readmesync.Session{}, fmt.Errorf("docker hub login failed for %s: %w", username, apiError(err))
	}

	token := gjson.GetBytes(resp, "token")
	if !token.Exists() || token.String() == "" {
		return readmesync.Session{}, ErrNoToken
	}

	slog.DebugContext(ctx, "Logged in to Docker Hub", "username", username)
	return readmesync.Session{Token: token.String()}, nil
}

// SetFullDescription replaces the full description of repo with text
func (c *Client) SetFullDescription(
	ctx context.Context,
	session readmesync.Session,
	repo readmesync.RepoRef,
	text string,
) error {
	body, err := json.Marshal(descriptionUpdate{FullDescription: text})
	if err != nil {
		return fmt.Errorf("failed to encode description update: %w", err)
	}

	target := fmt.Sprintf("%s/repositories/%s/%s/", c.baseURL, url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	_, err = c.http.Do(ctx, http.MethodPatch, target, body, httpclient.WithHeader("Authorization", "JWT "+session.Token))
	if err != nil {
		return fmt.Errorf("failed to update description of %s: %w", repo, apiError(err))
	}

	slog.DebugContext(ctx, "Updated Docker Hub description", "repository", repo.String(), "bytes", len(text))
	return nil
}

// apiError appends the detail or message Docker Hub puts in error bodies
func apiError(err error) error {
	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) || len(httpErr.Body) == 0 {
		return err
	}

	result := gjson.GetManyBytes(httpErr.Body, "detail", "message")
	for _, r := range result {
		if r.Exists() && r.String() != "" {
			return fmt.Errorf("%w: %s", err, r.String())
		}
	}
	return err
}
