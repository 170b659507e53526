package app

import (
	"github.com/stacklok/readmesync/internal/dockerhub"
	"github.com/stacklok/readmesync/internal/github"
	"github.com/stacklok/readmesync/internal/readmesync"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// SyncService runs one readme sync per webhook request
	SyncService readmesync.Service

	// GitHub checks repositories and fetches README.md (nil when SyncService is injected)
	GitHub *github.Client

	// DockerHub logs in and publishes descriptions (nil when SyncService is injected)
	DockerHub *dockerhub.Client
}
