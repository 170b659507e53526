package readmesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/stacklok/readmesync/internal/otel"
	"github.com/stacklok/readmesync/internal/telemetry"
)

// TracerName is the instrumentation scope of sync spans
const TracerName = "github.com/stacklok/readmesync/sync"

// DefaultCallTimeout bounds each outbound call when no timeout is configured
const DefaultCallTimeout = 10 * time.Second

// Stage is one outbound call of a sync
type Stage string

// Stages in the order a sync runs them
const (
	StageCheck   Stage = "check"
	StageLogin   Stage = "login"
	StageFetch   Stage = "fetch"
	StagePublish Stage = "publish"
)

var stageDescriptions = map[Stage]string{
	StageCheck:   "GitHub repository check",
	StageLogin:   "DockerHub login",
	StageFetch:   "README.md fetch",
	StagePublish: "DockerHub description update",
}

// Description returns the human readable stage name used in timeout messages
func (s Stage) Description() string {
	if d, ok := stageDescriptions[s]; ok {
		return d
	}
	return string(s)
}

// Result describes a successful sync
type Result struct {
	SyncID      string
	Source      RepoRef
	Branch      string
	Target      RepoRef
	ReadmeBytes int
	Duration    time.Duration
}

// Dependencies are the outbound collaborators of a sync. All four are required.
type Dependencies struct {
	Checker       RepositoryChecker
	Authenticator RegistryAuthenticator
	Fetcher       ReadmeFetcher
	Publisher     DescriptionPublisher
}

type syncer struct {
	deps Dependencies

	username string
	password string

	callTimeout time.Duration

	tracer  trace.Tracer
	metrics *telemetry.SyncMetrics
}

var _ Service = (*syncer)(nil)

// Option is a functional option for configuring the syncer
type Option func(*syncer) error

// WithCredentials sets the Docker Hub account used for every sync
func WithCredentials(username, password string) Option {
	return func(s *syncer) error {
		s.username = username
		s.password = password
		return nil
	}
}

// WithCallTimeout bounds each outbound call
func WithCallTimeout(timeout time.Duration) Option {
	return func(s *syncer) error {
		if timeout <= 0 {
			return fmt.Errorf("call timeout must be positive, got %s", timeout)
		}
		s.callTimeout = timeout
		return nil
	}
}

// WithTracerProvider enables sync and stage spans
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(s *syncer) error {
		if provider != nil {
			s.tracer = provider.Tracer(TracerName)
		}
		return nil
	}
}

// WithMeterProvider enables sync and stage metrics
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(s *syncer) error {
		metrics, err := telemetry.NewSyncMetrics(provider)
		if err != nil {
			return fmt.Errorf("failed to create sync metrics: %w", err)
		}
		s.metrics = metrics
		return nil
	}
}

// New creates a sync service over the given collaborators
func New(deps Dependencies, opts ...Option) (Service, error) {
	switch {
	case deps.Checker == nil:
		return nil, fmt.Errorf("repository checker is required")
	case deps.Authenticator == nil:
		return nil, fmt.Errorf("registry authenticator is required")
	case deps.Fetcher == nil:
		return nil, fmt.Errorf("readme fetcher is required")
	case deps.Publisher == nil:
		return nil, fmt.Errorf("description publisher is required")
	}

	s := &syncer{
		deps:        deps,
		callTimeout: DefaultCallTimeout,
		tracer:      tracenoop.NewTracerProvider().Tracer(TracerName),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Sync runs check, login, fetch and publish in order and stops at the first failure.
// Validation failures make no outbound call.
func (s *syncer) Sync(ctx context.Context, query url.Values) (*Result, error) {
	start := time.Now()

	req, err := ParseRequest(query)
	if err != nil {
		s.metrics.RecordSync(ctx, string(KindValidation), time.Since(start))
		slog.InfoContext(ctx, "Rejected sync request", "error", err)
		return nil, err
	}

	syncID := uuid.NewString()
	ctx, span := otel.StartSpan(ctx, s.tracer, "readmesync.Sync", trace.WithAttributes(
		otel.AttrSyncID.String(syncID),
		otel.AttrSourceRepo.String(req.Source.String()),
		otel.AttrSourceBranch.String(req.Branch),
		otel.AttrTargetRepo.String(req.Target.String()),
	))
	defer span.End()

	logger := slog.With(
		"sync_id", syncID,
		"github_repo", req.Source.String(),
		"github_branch", req.Branch,
		"dockerhub_repo", req.Target.String(),
	)
	logger.InfoContext(ctx, "Starting readme sync")

	readme, err := s.run(ctx, req)
	duration := time.Since(start)
	if err != nil {
		kind := KindOf(err)
		span.SetAttributes(otel.AttrErrorKind.String(string(kind)))
		otel.RecordError(span, err)
		s.metrics.RecordSync(ctx, string(kind), duration)
		if kind == KindCanceled {
			logger.InfoContext(ctx, "Readme sync canceled by caller", "error", err, "duration", duration)
			return nil, err
		}
		logger.WarnContext(ctx, "Readme sync failed",
			"kind", kind,
			"error", err,
			"cause", errors.Unwrap(err),
			"duration", duration,
		)
		return nil, err
	}

	span.SetAttributes(otel.AttrReadmeBytes.Int(len(readme)))
	s.metrics.RecordSync(ctx, "success", duration)
	logger.InfoContext(ctx, "Readme sync completed", "readme_bytes", len(readme), "duration", duration)

	return &Result{
		SyncID:      syncID,
		Source:      req.Source,
		Branch:      req.Branch,
		Target:      req.Target,
		ReadmeBytes: len(readme),
		Duration:    duration,
	}, nil
}

func (s *syncer) run(ctx context.Context, req Request) ([]byte, error) {
	var exists bool
	err := s.stage(ctx, StageCheck, func(ctx context.Context) error {
		var err error
		exists, err = s.deps.Checker.Exists(ctx, req.Source)
		return err
	})
	if err != nil {
		return nil, classify(err, func(err error) error { return notFoundError(req, err) })
	}
	if !exists {
		return nil, notFoundError(req, nil)
	}

	var session Session
	err = s.stage(ctx, StageLogin, func(ctx context.Context) error {
		var err error
		session, err = s.deps.Authenticator.Login(ctx, s.username, s.password)
		return err
	})
	if err != nil {
		return nil, classify(err, func(err error) error { return authError(err) })
	}

	var readme []byte
	err = s.stage(ctx, StageFetch, func(ctx context.Context) error {
		var err error
		readme, err = s.deps.Fetcher.FetchReadme(ctx, req.Source, req.Branch)
		return err
	})
	if err != nil {
		return nil, classify(err, func(err error) error { return fetchError(req, err) })
	}

	err = s.stage(ctx, StagePublish, func(ctx context.Context) error {
		return s.deps.Publisher.SetFullDescription(ctx, session, req.Target, string(readme))
	})
	if err != nil {
		return nil, classify(err, func(err error) error { return publishError(err) })
	}

	return readme, nil
}

// stage runs fn under the per-call timeout inside its own span. Deadline failures
// come back as KindTimeout errors, a canceled inbound request as KindCanceled.
func (s *syncer) stage(ctx context.Context, stage Stage, fn func(context.Context) error) error {
	ctx, span := otel.StartSpan(ctx, s.tracer, "readmesync."+string(stage),
		trace.WithAttributes(otel.AttrStage.String(string(stage))))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	start := time.Now()
	err := fn(callCtx)
	s.metrics.RecordStage(ctx, string(stage), time.Since(start), err == nil)

	if err == nil {
		return nil
	}
	otel.RecordError(span, err)

	if errors.Is(ctx.Err(), context.Canceled) {
		return canceledError(stage, err)
	}
	if isTimeout(callCtx, err) {
		return timeoutError(stage, err)
	}
	return err
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// classify keeps timeout and cancellation errors and maps everything else with wrap
func classify(err error, wrap func(error) error) error {
	if kind := KindOf(err); kind == KindTimeout || kind == KindCanceled {
		return err
	}
	return wrap(err)
}
