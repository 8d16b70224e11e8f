package api

import (
	"fmt"
	"net/http"

	"github.com/balkashynov/worktrack/internal/db"
	"github.com/balkashynov/worktrack/internal/models"
)

func (s *Server) handleGetWorkload(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "workload_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.store.SearchWorkloads(r.Context(), models.WorkloadCondition{WorkloadID: &id})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(rows) == 0 {
		s.fail(w, r, fmt.Errorf("%w: workload #%d", db.ErrNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, rows[0])
}

func (s *Server) handleCreateWorkload(w http.ResponseWriter, r *http.Request) {
	var form models.WorkloadForm
	if err := decodeJSON(r, &form); err != nil {
		s.fail(w, r, err)
		return
	}
	workload, err := s.store.CreateWorkload(r.Context(), *currentUser(r), form)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workload)
}

func (s *Server) handleEditWorkload(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "workload_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var form models.WorkloadForm
	if err := decodeJSON(r, &form); err != nil {
		s.fail(w, r, err)
		return
	}
	workload, err := s.store.UpdateWorkload(r.Context(), *currentUser(r), id, form)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workload)
}

func (s *Server) handleDeleteWorkload(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r, "workload_id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.DeleteWorkload(r.Context(), *currentUser(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("workload #%d deleted", id))
}

// handleUserWorkloads lists one user's entries, the caller's by default,
// over the configured reporting range unless bounds are given
func (s *Server) handleUserWorkloads(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	if r.URL.Query().Get("user_id") != "" {
		id, err := queryID(r, "user_id")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		userID = id
	}
	lower, err := queryDate(r, "lower_date")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	upper, err := queryDate(r, "upper_date")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if upper == nil {
		today := models.DateOf(s.now())
		upper = &today
	}
	if lower == nil {
		from := upper.AddDays(-s.rangeDays)
		lower = &from
	}

	rows, err := s.store.SearchWorkloads(r.Context(), models.WorkloadCondition{
		SpecifyUserID: &userID,
		LowerDate:     lower,
		UpperDate:     upper,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(rows))
}

func (s *Server) handleSearchWorkloads(w http.ResponseWriter, r *http.Request) {
	var cond models.WorkloadCondition
	if err := decodeJSON(r, &cond); err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := s.store.SearchWorkloads(r.Context(), cond)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(rows))
}
