package api

import (
	"errors"
	"net/http"

	"github.com/balkashynov/worktrack/internal/auth"
	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/models"
)

func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := s.csrf.Issue(w)
	writeJSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var form models.SignupForm
	if err := decodeJSON(r, &form); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.store.CreateUser(r.Context(), form, s.hash)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "account created for "+user.Name)
}

func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	var form models.LoginForm
	if err := decodeJSON(r, &form); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.store.Authenticate(r.Context(), form.Email, form.Password, s.verify)
	if errors.Is(err, db.ErrUnauthenticated) {
		writeMessage(w, http.StatusUnauthorized, "email or password is incorrect")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	auth.SetAccessCookie(w, token, s.tokens.TTL(), s.secure)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAccessCookie(w, s.secure)
	writeMessage(w, http.StatusOK, "logged out")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *Server) handleActiveUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListActiveUsers(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(users))
}

// handleDeactivate deactivates the caller's own account and signs them out
func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := s.store.SetUserActive(r.Context(), user.ID, false); err != nil {
		s.fail(w, r, err)
		return
	}
	auth.ClearAccessCookie(w, s.secure)
	writeMessage(w, http.StatusOK, "account deactivated")
}

func (s *Server) handleRootDelete(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "user_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if id == currentUser(r).ID {
		writeMessage(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "user deleted")
}

func (s *Server) handleRootActivate(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "user_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.SetUserActive(r.Context(), id, true); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "user activated")
}

func (s *Server) handleRootPermission(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "user_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.GrantSuperuser(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "superuser permission granted")
}
