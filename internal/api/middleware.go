package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/balkashynov/worktrack/internal/auth"
	"github.com/balkashynov/worktrack/internal/models"
)

type contextKey string

const userKey contextKey = "user"

func currentUser(r *http.Request) *models.User {
	if u, ok := r.Context().Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}

// requireUser resolves the access cookie to an active user and re-issues
// the cookie so the session slides forward on every request
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.AccessToken(r)
		if !ok {
			writeUnauthenticated(w)
			return
		}
		userID, err := s.tokens.Verify(token)
		if err != nil {
			s.log.Debug("rejected token", "error", err)
			writeUnauthenticated(w)
			return
		}
		user, err := s.store.GetUser(r.Context(), userID)
		if err != nil || !user.IsActive {
			writeUnauthenticated(w)
			return
		}

		fresh, err := s.tokens.Issue(user.ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		auth.SetAccessCookie(w, fresh, s.tokens.TTL(), s.secure)

		ctx := context.WithValue(r.Context(), userKey, user)
		next(w, r.WithContext(ctx))
	}
}

// requireSuperuser is requireUser plus an is_superuser check
func (s *Server) requireSuperuser(next http.HandlerFunc) http.HandlerFunc {
	return s.requireUser(func(w http.ResponseWriter, r *http.Request) {
		if u := currentUser(r); u == nil || !u.IsSuperuser {
			writeMessage(w, http.StatusForbidden, "superuser permission required")
			return
		}
		next(w, r)
	})
}

// checkCSRF guards every state-changing request
func (s *Server) checkCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if err := s.csrf.Validate(r); err != nil {
				s.log.Info("csrf check failed", "path", r.URL.Path, "error", err)
				writeMessage(w, http.StatusForbidden, "invalid csrf token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// cors allows credentialed requests from the configured origins
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.origins[origin] {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", strings.Join([]string{"Content-Type", auth.CSRFHeader}, ", "))
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// accessLog writes one line per request
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
