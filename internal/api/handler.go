package api

import (
	"net/http"

	"github.com/stacklok/readmesync/internal/api/common"
	"github.com/stacklok/readmesync/internal/readmesync"
)

const (
	// SyncIDHeader carries the id of a successful sync
	SyncIDHeader = "X-Sync-Id"

	okBody = "OK"
)

// StatusCode maps a sync failure kind to its response status
func StatusCode(kind readmesync.Kind) int {
	switch kind {
	case "":
		return http.StatusOK
	case readmesync.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadRequest
	}
}

func syncHandler(svc readmesync.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Sync(r.Context(), r.URL.Query())
		if err != nil {
			common.WriteTextResponse(w, err.Error(), StatusCode(readmesync.KindOf(err)))
			return
		}

		if result != nil {
			w.Header().Set(SyncIDHeader, result.SyncID)
		}
		common.WriteTextResponse(w, okBody, http.StatusOK)
	}
}
