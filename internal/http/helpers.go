package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tourreport/internal/core"
	"tourreport/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, core.ErrInvalidMonth):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrEntryNotFound), errors.Is(err, core.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEntryLocked):
		return http.StatusConflict
	case errors.Is(err, core.ErrMissingBranch),
		errors.Is(err, core.ErrMissingInspectionType),
		errors.Is(err, core.ErrInvalidDayStatus),
		errors.Is(err, core.ErrInvalidSection),
		errors.Is(err, core.ErrSectionMismatch),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Internal errors are
// logged and hidden from the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, strings.ReplaceAll(err.Error(), "\n", "; "))
}

// writeFile sends a download with the suggested file name.
func writeFile(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
