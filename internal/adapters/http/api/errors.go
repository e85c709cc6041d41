package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/skillcat/internal/adapters/ingest"
	"github.com/okian/skillcat/internal/adapters/mq/queue"
	"github.com/okian/skillcat/internal/adapters/repository"
	"github.com/okian/skillcat/internal/domain/provenance"
	"github.com/okian/skillcat/internal/domain/review"
	"github.com/okian/skillcat/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrTooLarge     = errors.New("request body too large")
)

// WrapKind tags err with the failing operation and an API kind.
func WrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// NewKind reports an API kind for op without an underlying cause.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// statusFor maps domain and adapter errors to an HTTP status and error code.
// Order matters: scoring failures wrap context errors and are checked first.
func statusFor(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, scoring.ErrScoringUnavailable):
		return http.StatusServiceUnavailable, "scoring_unavailable"
	case errors.Is(err, scoring.ErrInvalidScore):
		return http.StatusBadGateway, "invalid_score"
	case errors.Is(err, ErrTooLarge), errors.As(err, &maxBytes), errors.Is(err, ingest.ErrTooManyRows):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrBadRequest), errors.Is(err, scoring.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ingest.ErrEmptyUpload), errors.Is(err, ingest.ErrMissingColumn), errors.Is(err, ingest.ErrMalformedUpload):
		return http.StatusBadRequest, "invalid_upload"
	case errors.Is(err, provenance.ErrInvalidActor), errors.Is(err, provenance.ErrInvalidAction):
		return http.StatusBadRequest, "invalid_decision"
	case errors.Is(err, review.ErrUnknownCategory):
		return http.StatusUnprocessableEntity, "unknown_category"
	case errors.Is(err, review.ErrUnknownSkill), errors.Is(err, provenance.ErrUnknownSkill), errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, provenance.ErrDuplicateProposal), errors.Is(err, repository.ErrDuplicateID):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, provenance.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, queue.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
