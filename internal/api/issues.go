package api

import "net/http"

func (s *Server) handleMainIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.store.ListMainIssues(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(issues))
}

func (s *Server) handleSubtasks(w http.ResponseWriter, r *http.Request) {
	issues, err := s.store.ListSubtasks(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(issues))
}

func (s *Server) handleSubtasksWithPath(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.SubtasksWithPath(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(rows))
}

// handleHierarchy returns one (ancestor_1, ancestor_2, subtask) triple per subtask
func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	triples, err := s.store.IssueTriples(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(triples))
}
