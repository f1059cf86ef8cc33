package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"xpeak/internal/engine"
)

const maxBodyBytes = 1 << 20

// problem is the error body, shaped like an RFC 9457 problem detail.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem{Title: http.StatusText(status), Status: status, Detail: detail})
}

// badRequest marks errors caused by the request itself.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func invalid(format string, args ...any) error {
	return badRequest{err: fmt.Errorf(format, args...)}
}

// writeError maps engine errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		br   badRequest
		gate engine.GateError
	)
	switch {
	case errors.As(err, &br):
		writeProblem(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &gate):
		writeProblem(w, http.StatusForbidden, err.Error())
	case errors.Is(err, engine.ErrBonusNotFound):
		writeProblem(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrQuestBusy),
		errors.Is(err, engine.ErrBonusUnavailable),
		errors.Is(err, engine.ErrTaskCompleted),
		errors.Is(err, engine.ErrChallengeNotWon):
		writeProblem(w, http.StatusConflict, err.Error())
	case errors.Is(err, engine.ErrInvalidBreakdown):
		writeProblem(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, engine.ErrAINotConfigured):
		writeProblem(w, http.StatusNotImplemented, err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, err.Error())
	}
}

func notFound(w http.ResponseWriter, what string) {
	writeProblem(w, http.StatusNotFound, what+" not found")
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalid("decode body: %v", err)
	}
	return nil
}
