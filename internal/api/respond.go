package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/jira"
	"github.com/balkashynov/worktrack/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.Message{Message: msg})
}

func writeUnauthenticated(w http.ResponseWriter) {
	writeMessage(w, http.StatusUnauthorized, "authentication required")
}

// fail maps an error to a response. Conflicts are routine and come back as
// a 200 message; store failures are logged and hidden.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *jira.UpstreamError
	switch {
	case errors.Is(err, db.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, db.ErrForbidden):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, db.ErrConflict):
		writeMessage(w, http.StatusOK, err.Error())
	case errors.Is(err, db.ErrUnauthenticated):
		writeUnauthenticated(w)
	case errors.As(err, &upstream):
		s.log.Warn("jira request failed", "path", r.URL.Path, "status", upstream.StatusCode, "url", upstream.URL)
		writeMessage(w, http.StatusBadGateway, fmt.Sprintf("jira returned %d", upstream.StatusCode))
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", db.ErrValidation, err)
	}
	return nil
}

// queryID reads a required positive integer query parameter
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", db.ErrValidation, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", db.ErrValidation, name)
	}
	return id, nil
}

// queryDate reads an optional YYYY-MM-DD query parameter
func queryDate(r *http.Request, name string) (*models.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", db.ErrValidation, name, err)
	}
	return &d, nil
}

// emptyIfNil keeps list endpoints from encoding null
func emptyIfNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
