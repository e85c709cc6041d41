package api

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/okian/skillcat/internal/domain/types"
)

const uploadFormField = "file"

// UploadDependencies defines the batch ingestion operation.
type UploadDependencies interface {
	Upload(ctx context.Context, r io.Reader) (types.UploadResult, error)
}

// UploadsHandler accepts CSV skill sheets.
type UploadsHandler struct {
	deps     UploadDependencies
	maxBytes int64
}

// NewUploadsHandler creates a new uploads handler.
func NewUploadsHandler(deps UploadDependencies, maxBytes int64) *UploadsHandler {
	return &UploadsHandler{deps: deps, maxBytes: maxBytes}
}

// HandleUpload handles POST /uploads requests. The sheet is either the raw
// body (text/csv) or the "file" part of a multipart form. Rows are queued
// for asynchronous ingestion; a response of 429 still carries the counts
// and the rejected rows can be retried by uploading the same sheet again.
func (h *UploadsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload"
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	body := io.Reader(r.Body)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, _, err := r.FormFile(uploadFormField)
		if err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		defer func() { _ = file.Close() }()
		body = file
	}

	res, err := h.deps.Upload(r.Context(), body)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if res.Rejected > 0 {
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, res)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}
