package http

import (
	"net/http"

	"tourreport/internal/core"
)

func (s *Server) handleGetTour(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Tour())
}

func (s *Server) handlePutTour(w http.ResponseWriter, r *http.Request) {
	var req tourRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	settings, err := req.settings()
	if err != nil {
		respondError(w, r, err)
		return
	}
	updated, err := s.svc.UpdateTour(r.Context(), settings)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Profile())
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	p, err := req.profile()
	if err != nil {
		respondError(w, r, err)
		return
	}
	updated, err := s.svc.UpdateProfile(r.Context(), p)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type monthResponse struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (s *Server) handleListMonths(w http.ResponseWriter, r *http.Request) {
	months := s.svc.SavedMonths()
	out := make([]monthResponse, len(months))
	for i, ym := range months {
		out[i] = monthResponse{
			Year:  ym[0],
			Month: ym[1],
			Key:   core.MonthKey(ym[0], ym[1]),
			Label: core.MonthLabel(ym[0], ym[1]),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
