package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitit-app/splitit/internal/middleware"
	"github.com/splitit-app/splitit/internal/models"
)

type createOccasionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleCreateOccasion(w http.ResponseWriter, r *http.Request) {
	var req createOccasionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	occasion, err := s.occasions.CreateOccasion(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, occasion)
}

func (s *Server) handleListOccasions(w http.ResponseWriter, r *http.Request) {
	occasions, err := s.occasions.ListOccasions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if occasions == nil {
		occasions = []*models.Occasion{}
	}
	writeJSON(w, http.StatusOK, occasions)
}

func (s *Server) handleGetOccasion(w http.ResponseWriter, r *http.Request) {
	occasion, err := s.occasions.GetOccasion(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, occasion)
}

func (s *Server) handleOccasionSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.summaries.Summarize(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type createEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OccasionID  string `json:"occasion_id"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	event, err := s.occasions.CreateEvent(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description, req.OccasionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleEventExpenditures(w http.ResponseWriter, r *http.Request) {
	exps, err := s.occasions.EventExpenditures(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if exps == nil {
		exps = []*models.Expenditure{}
	}
	writeJSON(w, http.StatusOK, exps)
}
