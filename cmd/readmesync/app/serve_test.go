package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readmesync.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServeRunsUntilCancelled(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, `{
		"dockerhub_username": "robot",
		"dockerhub_password": "s3cret",
		"shutdown_timeout": "2s"
	}`)
	addr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, serveOptions{configPath: configPath, address: addr})
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get("http://" + addr + "/")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields in GET request", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}

func TestServeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		configPath    func(t *testing.T) string
		address       string
		errorContains string
	}{
		{
			name:          "missing config file",
			configPath:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.json") },
			errorContains: "failed to load configuration",
		},
		{
			name: "missing credentials",
			configPath: func(t *testing.T) string {
				return writeConfig(t, `{"dockerhub_username": "robot"}`)
			},
			errorContains: "dockerhub_password is required",
		},
		{
			name: "invalid address",
			configPath: func(t *testing.T) string {
				return writeConfig(t, `{"dockerhub_username": "robot", "dockerhub_password": "s3cret"}`)
			},
			address:       "no-port",
			errorContains: "failed to create application",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := serve(context.Background(), serveOptions{configPath: tt.configPath(t), address: tt.address})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestServeReturnsListenError(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	configPath := writeConfig(t, `{"dockerhub_username": "robot", "dockerhub_password": "s3cret"}`)

	err = serve(context.Background(), serveOptions{configPath: configPath, address: l.Addr().String()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server failed")
}
