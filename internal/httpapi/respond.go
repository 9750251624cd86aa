package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/raphaelgruber/voicejournal/internal/blob"
	"github.com/raphaelgruber/voicejournal/internal/config"
	"github.com/raphaelgruber/voicejournal/internal/llm"
	"github.com/raphaelgruber/voicejournal/internal/service"
	"github.com/raphaelgruber/voicejournal/internal/store"
	"github.com/raphaelgruber/voicejournal/internal/transcribe"
)

// Result is the envelope of every API response.
type Result struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func ok(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Result{IsSuccess: true, Message: message, Data: data})
}

// fail maps err onto a status and user-facing message. Unexpected errors are
// logged and hidden behind fallback.
func fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, msg := classify(err, fallback)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		slog.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, Result{IsSuccess: false, Message: msg})
}

func classify(err error, fallback string) (int, string) {
	var (
		badReq   *badRequestError
		pipeErr  *service.PipelineError
		provErr  *llm.ProviderError
		transErr *transcribe.APIError
	)
	switch {
	case errors.As(err, &badReq):
		return http.StatusBadRequest, badReq.msg
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "User not authenticated"
	case errors.Is(err, service.ErrNoteNotFound):
		return http.StatusNotFound, "Voice note not found"
	case errors.As(err, &pipeErr):
		switch {
		case errors.Is(err, service.ErrEmptyTranscription):
			return http.StatusBadRequest, "Cannot process empty transcription (temp audio: " + pipeErr.TempPath + ")"
		case pipeErr.Stage == service.StageTranscribe:
			return http.StatusBadGateway, pipeErr.Error()
		}
		return http.StatusInternalServerError, pipeErr.Error()
	case errors.Is(err, service.ErrEmptyTranscription):
		return http.StatusBadRequest, "Cannot process empty transcription"
	case errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest, "Message cannot be empty"
	case errors.Is(err, service.ErrEmptyPatch):
		return http.StatusBadRequest, "No fields to update"
	case errors.Is(err, service.ErrNothingToAnalyze):
		return http.StatusUnprocessableEntity, "No voice notes to analyze"
	case errors.Is(err, config.ErrMissingCredential):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, blob.ErrExists), errors.Is(err, store.ErrConflict):
		return http.StatusConflict, fallback + ": already exists"
	case errors.Is(err, store.ErrInvalid):
		return http.StatusBadRequest, fallback + ": invalid record"
	case errors.As(err, &provErr), errors.As(err, &transErr):
		return http.StatusBadGateway, fallback
	default:
		return http.StatusInternalServerError, fallback
	}
}
