package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/readmesync/internal/config"
	"github.com/stacklok/readmesync/internal/dockerhub"
	"github.com/stacklok/readmesync/internal/github"
	"github.com/stacklok/readmesync/internal/readmesync/mocks"
)

func createTestConfig() *config.Config {
	return &config.Config{
		DockerHubUsername: "robot",
		DockerHubPassword: "s3cret",
		Port:              8080,
	}
}

func TestBaseConfigDefaults(t *testing.T) {
	t.Parallel()

	built, err := baseConfig(WithConfig(createTestConfig()))
	require.NoError(t, err)
	assert.Equal(t, ":8080", built.address)
	assert.Equal(t, config.DefaultRequestTimeout, built.requestTimeout)
	assert.Equal(t, defaultReadTimeout, built.readTimeout)
	assert.Equal(t, defaultIdleTimeout, built.idleTimeout)
}

func TestBaseConfigDefaultPort(t *testing.T) {
	t.Parallel()

	built, err := baseConfig(WithConfig(&config.Config{DockerHubUsername: "u", DockerHubPassword: "p"}))
	require.NoError(t, err)
	assert.Equal(t, ":80", built.address)
}

func TestBaseConfigRequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := baseConfig(WithAddress(":9090"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config cannot be nil")
}

func TestBaseConfigOverrides(t *testing.T) {
	t.Parallel()

	built, err := baseConfig(
		WithConfig(createTestConfig()),
		WithAddress("127.0.0.1:9090"),
		WithRequestTimeout(5*time.Second),
	)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", built.address)
	assert.Equal(t, 5*time.Second, built.requestTimeout)

	_, err = baseConfig(WithConfig(createTestConfig()), WithRequestTimeout(0))
	require.Error(t, err)
}

func TestWithAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{name: "port only", addr: ":8080"},
		{name: "localhost", addr: "localhost:8080"},
		{name: "ipv4", addr: "0.0.0.0:80"},
		{name: "empty", addr: "", wantErr: true},
		{name: "no colon", addr: "8080", wantErr: true},
		{name: "empty port", addr: "localhost:", wantErr: true},
		{name: "port out of range", addr: ":70000", wantErr: true},
		{name: "hostname", addr: "example.com:80", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &readmeSyncAppConfig{}
			err := WithAddress(tt.addr)(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addr, cfg.address)
		})
	}
}

func TestWithMiddlewares(t *testing.T) {
	t.Parallel()

	mw := func(next http.Handler) http.Handler { return next }
	cfg := &readmeSyncAppConfig{}
	require.NoError(t, WithMiddlewares(mw, mw)(cfg))
	assert.Len(t, cfg.middlewares, 2)
}

func TestBuildHTTPServer(t *testing.T) {
	t.Parallel()

	t.Run("default middlewares", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		b, err := baseConfig(WithConfig(createTestConfig()))
		require.NoError(t, err)

		server, err := buildHTTPServer(context.Background(), b, mocks.NewMockService(ctrl))
		require.NoError(t, err)

		assert.Equal(t, ":8080", server.Addr)
		assert.Len(t, b.middlewares, 5)
		assert.Equal(t, config.DefaultRequestTimeout+writeTimeoutMargin, server.WriteTimeout)
		assert.Equal(t, defaultReadHeaderTimeout, server.ReadHeaderTimeout)
		require.NotNil(t, server.BaseContext)
	})

	t.Run("telemetry middlewares", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		exporter := tracetest.NewInMemoryExporter()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
		t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

		b, err := baseConfig(
			WithConfig(createTestConfig()),
			WithTracerProvider(tp),
			WithMeterProvider(mp),
		)
		require.NoError(t, err)

		server, err := buildHTTPServer(context.Background(), b, svc)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		server.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "GET /*", spans[0].Name)
	})
}

func TestBuildSyncComponents(t *testing.T) {
	t.Parallel()

	t.Run("injected service", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)

		b, err := baseConfig(WithConfig(createTestConfig()), WithSyncService(svc))
		require.NoError(t, err)

		components, err := buildSyncComponents(b)
		require.NoError(t, err)
		assert.Same(t, svc, components.SyncService)
		assert.Nil(t, components.GitHub)
		assert.Nil(t, components.DockerHub)
	})

	t.Run("real clients", func(t *testing.T) {
		t.Parallel()

		cfg := createTestConfig()
		cfg.GitHubToken = "ghp_test"
		b, err := baseConfig(WithConfig(cfg))
		require.NoError(t, err)

		components, err := buildSyncComponents(b)
		require.NoError(t, err)
		assert.NotNil(t, components.SyncService)
		assert.NotNil(t, components.GitHub)
		assert.NotNil(t, components.DockerHub)
	})
}

// fakeUpstreams serves the GitHub web, raw content and Docker Hub endpoints from one server
type fakeUpstreams struct {
	mu          sync.Mutex
	published   []string
	publishAuth string
}

func (f *fakeUpstreams) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("HEAD /web/acme/widgets", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /raw/acme/widgets/master/README.md", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Hello World"))
	})
	mux.HandleFunc("POST /v2/users/login/", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &creds)
		if creds["username"] != "robot" || creds["password"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect authentication credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"jwt-abc"}`))
	})
	mux.HandleFunc("PATCH /v2/repositories/acmehub/widgets-image/", func(w http.ResponseWriter, r *http.Request) {
		var update map[string]string
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &update)

		f.mu.Lock()
		f.published = append(f.published, update["full_description"])
		f.publishAuth = r.Header.Get("Authorization")
		f.mu.Unlock()

		_, _ = w.Write([]byte(`{}`))
	})

	return mux
}

func TestNewReadmeSyncAppEndToEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		password      string
		query         string
		wantStatus    int
		wantBody      string
		wantPublished []string
	}{
		{
			name:          "syncs readme",
			password:      "s3cret",
			query:         "github_repo=acme/widgets&dockerhub_repo=acmehub/widgets-image",
			wantStatus:    http.StatusOK,
			wantBody:      "OK",
			wantPublished: []string{"Hello World"},
		},
		{
			name:       "missing fields",
			password:   "s3cret",
			query:      "github_repo=acme/widgets",
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing required fields in GET request",
		},
		{
			name:       "unknown repository",
			password:   "s3cret",
			query:      "github_repo=acme/nothing&dockerhub_repo=acmehub/widgets-image",
			wantStatus: http.StatusBadRequest,
			wantBody:   "GitHub repository: acme/nothing not found",
		},
		{
			name:       "bad credentials",
			password:   "wrong",
			query:      "github_repo=acme/widgets&dockerhub_repo=acmehub/widgets-image",
			wantStatus: http.StatusBadRequest,
			wantBody:   "Unable to login to DockerHub, check credentials",
		},
		{
			name:       "missing readme on branch",
			password:   "s3cret",
			query:      "github_repo=acme/widgets&dockerhub_repo=acmehub/widgets-image&github_branch=gh-pages",
			wantStatus: http.StatusBadRequest,
			wantBody:   "Unable to fetch README.md from GitHub repository: acme/widgets branch: gh-pages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			upstreams := &fakeUpstreams{}
			server := httptest.NewServer(upstreams.handler())
			defer server.Close()

			cfg := createTestConfig()
			cfg.DockerHubPassword = tt.password

			app, err := NewReadmeSyncApp(context.Background(),
				WithConfig(cfg),
				WithGitHubOptions(github.WithWebURL(server.URL+"/web"), github.WithRawURL(server.URL+"/raw")),
				WithDockerHubOptions(dockerhub.WithBaseURL(server.URL+"/v2")),
			)
			require.NoError(t, err)
			t.Cleanup(func() { _ = app.Stop(time.Second) })

			rr := httptest.NewRecorder()
			app.GetHTTPServer().Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hook?"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantBody, rr.Body.String())

			upstreams.mu.Lock()
			defer upstreams.mu.Unlock()
			assert.Equal(t, tt.wantPublished, upstreams.published)
			if len(tt.wantPublished) > 0 {
				assert.Equal(t, "JWT jwt-abc", upstreams.publishAuth)
			}
		})
	}
}
