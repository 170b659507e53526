package readmesync

import (
	"context"
	"net/url"
)

//go:generate mockgen -destination=mocks/mock_interfaces.go -package=mocks -source=interfaces.go

// Service runs one sync per inbound webhook request
type Service interface {
	// Sync validates query and pushes the README to Docker Hub
	Sync(ctx context.Context, query url.Values) (*Result, error)
}

// Session is an authenticated Docker Hub session
type Session struct {
	Token string
}

// RepositoryChecker resolves whether a GitHub repository exists
type RepositoryChecker interface {
	Exists(ctx context.Context, repo RepoRef) (bool, error)
}

// RegistryAuthenticator logs in to Docker Hub
type RegistryAuthenticator interface {
	Login(ctx context.Context, username, password string) (Session, error)
}

// ReadmeFetcher downloads README.md from a branch of a GitHub repository
type ReadmeFetcher interface {
	FetchReadme(ctx context.Context, repo RepoRef, branch string) ([]byte, error)
}

// DescriptionPublisher replaces the full description of a Docker Hub repository
type DescriptionPublisher interface {
	SetFullDescription(ctx context.Context, session Session, repo RepoRef, text string) error
}
