package api

import (
	"net/http"
	"strconv"

	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/jira"
)

func (s *Server) handleJiraProjects(w http.ResponseWriter, r *http.Request) {
	if s.jira == nil {
		writeMessage(w, http.StatusServiceUnavailable, "jira is not configured")
		return
	}
	projects, err := s.jira.ListProjects(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	type remoteProject struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		JiraKey     string `json:"jira_key"`
		Description string `json:"description"`
	}
	out := make([]remoteProject, 0, len(projects))
	for _, p := range projects {
		out = append(out, remoteProject{ID: p.ID, Name: p.Name, JiraKey: p.Key, Description: p.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDBProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(projects))
}

// handleResync runs a full Jira resync inside the request
func (s *Server) handleResync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		writeMessage(w, http.StatusServiceUnavailable, "jira is not configured")
		return
	}
	report, err := s.syncer.Resync(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleProjectTarget(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req struct {
		IsTarget *bool `json:"is_target"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.IsTarget == nil {
		writeMessage(w, http.StatusBadRequest, "is_target is required")
		return
	}

	project, err := s.store.SetProjectTarget(r.Context(), id, *req.IsTarget)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

var (
	_ jira.Source = (*jira.Client)(nil)
	_ jira.Sink   = (*db.Store)(nil)
)
