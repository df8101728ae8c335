package http

import (
	"net/http"

	"tourreport/internal/core"
)

type entryListResponse struct {
	Entries []core.InspectionEntry `json:"entries"`
}

type itemCreatedResponse struct {
	ItemID string               `json:"itemId"`
	Entry  core.InspectionEntry `json:"entry"`
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts := s.svc.Drafts()
	if drafts == nil {
		drafts = []core.InspectionEntry{}
	}
	writeJSON(w, http.StatusOK, entryListResponse{Entries: drafts})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	date, err := optionalDate(req.Date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	e, err := s.svc.CreateDraft(r.Context(), date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/entries/"+e.ID)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Entry(r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handlePatchEntry(w http.ResponseWriter, r *http.Request) {
	var req entryPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		respondError(w, r, err)
		return
	}
	e, err := s.svc.UpdateEntry(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if _, err := s.svc.DeleteEntry(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetDatePart(w http.ResponseWriter, r *http.Request) {
	part, err := parseDatePart(r.PathValue("part"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req datePartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	e, err := s.svc.SetDatePart(r.Context(), r.PathValue("id"), part, req.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.SaveEntry(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	section, err := parseSectionPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	e, itemID, err := s.svc.AddItem(r.Context(), r.PathValue("id"), section)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemCreatedResponse{ItemID: itemID, Entry: e})
}

func (s *Server) handlePatchItem(w http.ResponseWriter, r *http.Request) {
	section, err := parseSectionPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req itemPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	id, itemID := r.PathValue("id"), r.PathValue("itemID")
	var e core.InspectionEntry
	if section.IsJourney() {
		if req.hasExpenseFields() {
			respondError(w, r, core.ErrSectionMismatch)
			return
		}
		patch, perr := req.journeyPatchRequest.patch()
		if perr != nil {
			respondError(w, r, perr)
			return
		}
		e, err = s.svc.UpdateJourneyItem(r.Context(), id, section, itemID, patch)
	} else {
		if req.hasJourneyFields() {
			respondError(w, r, core.ErrSectionMismatch)
			return
		}
		patch, perr := req.expensePatchRequest.patch()
		if perr != nil {
			respondError(w, r, perr)
			return
		}
		e, err = s.svc.UpdateExpenseItem(r.Context(), id, itemID, patch)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	section, err := parseSectionPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	e, err := s.svc.RemoveItem(r.Context(), r.PathValue("id"), section, r.PathValue("itemID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
