package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkovalenko/fileharbor/internal/common"
	"github.com/dkovalenko/fileharbor/internal/logging"
)

type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps service sentinels onto the HTTP contract. Ownership
// violations answer 404, same as a missing resource, so responses never
// reveal whether a foreign id exists.
func writeError(ctx context.Context, w http.ResponseWriter, logger logging.Logger, err error) {
	var partial *common.PartialDeleteError

	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorInvalidUpload):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, common.ErrorUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: "unauthorized"})
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorForbidden):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "not found"})
	case errors.Is(err, common.ErrorEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "email already registered"})
	case errors.Is(err, common.ErrorFolderNotEmpty):
		writeJSON(w, http.StatusConflict, errorResponse{Message: "folder is not empty"})
	case errors.As(err, &partial):
		logger.Error(ctx, "partial delete", "file_id", partial.FileID, "key", partial.StorageKey, "error", partial.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "delete partially failed", Code: "partial_delete"})
	case errors.Is(err, common.ErrorUpstreamStorage):
		logger.Error(ctx, "blob store failure", "error", err.Error())
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: "storage unavailable"})
	default:
		logger.Error(ctx, "internal error", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}
