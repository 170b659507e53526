// Package readmesync implements the sync of a GitHub README.md into the full description
// of a Docker Hub repository.
package readmesync

import (
	"fmt"
	"net/url"
	"strings"
)

// Query parameters read from the inbound webhook request
const (
	ParamGitHubRepo    = "github_repo"
	ParamDockerHubRepo = "dockerhub_repo"
	ParamGitHubBranch  = "github_branch"
)

// DefaultBranch is used when github_branch is absent or empty
const DefaultBranch = "master"

// RepoRef identifies a repository as owner/name, on GitHub or on Docker Hub
type RepoRef struct {
	Owner string
	Name  string
}

// String returns the owner/name form
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoRef splits an owner/name reference. Exactly one slash and two non-empty
// segments are accepted.
func ParseRepoRef(value string) (RepoRef, error) {
	owner, name, ok := strings.Cut(value, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoRef{}, fmt.Errorf("invalid repository reference %q", value)
	}
	return RepoRef{Owner: owner, Name: name}, nil
}

// Request is a validated sync request
type Request struct {
	Source RepoRef
	Branch string
	Target RepoRef

	// RawSource is the github_repo value as received, used in response messages
	RawSource string
}

// ParseRequest validates the webhook query. Empty values count as missing.
func ParseRequest(query url.Values) (Request, error) {
	githubRepo := query.Get(ParamGitHubRepo)
	dockerhubRepo := query.Get(ParamDockerHubRepo)
	if githubRepo == "" || dockerhubRepo == "" {
		return Request{}, NewError(KindValidation, MsgMissingFields, nil)
	}

	source, err := ParseRepoRef(githubRepo)
	if err != nil {
		return Request{}, NewError(KindValidation, invalidRefMessage(githubRepo), err)
	}

	target, err := ParseRepoRef(dockerhubRepo)
	if err != nil {
		return Request{}, NewError(KindValidation, invalidRefMessage(dockerhubRepo), err)
	}

	branch := query.Get(ParamGitHubBranch)
	if branch == "" {
		branch = DefaultBranch
	}

	return Request{
		Source:    source,
		Branch:    branch,
		Target:    target,
		RawSource: githubRepo,
	}, nil
}

func invalidRefMessage(value string) string {
	return fmt.Sprintf("Invalid repository reference: %s (expected owner/name)", value)
}
