package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/sports-ticker/internal/usecase"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "sports-ticker"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorKind struct {
	target     error
	httpStatus int
	reason     string
	status     string
}

// First match wins. Fetch failures are checked before dependency outages so
// an upstream error that also trips the breaker still reads as 502.
var errorKinds = []errorKind{
	{usecase.ErrInvalidInput, http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"},
	{usecase.ErrNotFound, http.StatusNotFound, "notFound", "NOT_FOUND"},
	{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"},
	{usecase.ErrCycleInProgress, http.StatusConflict, "cycleInProgress", "ABORTED"},
	{usecase.ErrFetchFailure, http.StatusBadGateway, "upstreamFailure", "UNAVAILABLE"},
	{usecase.ErrDependencyUnavailable, http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"},
}

var internalErrorKind = errorKind{httpStatus: http.StatusInternalServerError, reason: "internalError", status: "INTERNAL"}

func mapError(err error) errorKind {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.target) {
			return kind
		}
	}
	return internalErrorKind
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, googleResponseEnvelope{APIVersion: googleAPIVersion, Data: data})
}

func writeFailure(w http.ResponseWriter, kind errorKind, message string) {
	writeJSON(w, kind.httpStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    kind.httpStatus,
			Message: message,
			Status:  kind.status,
			Errors:  []googleErrorItem{{Domain: errorDomain, Reason: kind.reason, Message: message}},
		},
	})
}

// writeError maps err onto the envelope and marks the active span failed for
// server-side errors.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := mapError(err)
	if kind.httpStatus >= http.StatusInternalServerError {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.reason)
	}
	writeFailure(w, kind, err.Error())
}

func writeInternalError(w http.ResponseWriter) {
	writeFailure(w, internalErrorKind, "internal server error")
}
