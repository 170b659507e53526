package versions

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfoWithValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		version       string
		commit        string
		buildDate     string
		wantVersion   string
		wantBuildDate string
	}{
		{
			name:          "release build",
			version:       "v1.2.0",
			commit:        "0123456789abcdef",
			buildDate:     "2026-01-02T03:04:05Z",
			wantVersion:   "v1.2.0",
			wantBuildDate: "2026-01-02 03:04:05 UTC",
		},
		{
			name:          "unparseable date kept as is",
			version:       "v1.2.0",
			commit:        "abc",
			buildDate:     "yesterday",
			wantVersion:   "v1.2.0",
			wantBuildDate: "yesterday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := getVersionInfoWithValues(tt.version, tt.commit, tt.buildDate)
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, tt.commit, info.Commit)
			assert.Equal(t, tt.wantBuildDate, info.BuildDate)
			assert.Equal(t, runtime.Version(), info.GoVersion)
			assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
		})
	}
}

func TestGetVersionInfoDevBuild(t *testing.T) {
	t.Parallel()

	info := getVersionInfoWithValues("dev", "0123456789abcdef", unknownStr)
	assert.Equal(t, "build-01234567", info.Version)

	info = GetVersionInfo()
	assert.True(t, strings.HasPrefix(info.Version, "build-") || Version != "dev")
}
