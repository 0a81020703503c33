package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/timesheet/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v before the status line goes out, so a value that
// cannot be encoded (for example a non-finite float) turns into a 500.
func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error(ctx, "encode response failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
		return
	}
	writeBody(w, status, data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	data, _ := json.Marshal(errorResponse{Error: msg})
	writeBody(w, status, data)
}

func writeBody(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrorEditWindowClosed):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail logs server-side errors and writes the mapped status. Internal
// details are not exposed to the client.
func (s *Server) fail(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "error", err)
		writeError(w, status, common.ErrorInternal.Error())
		return
	}
	writeError(w, status, err.Error())
}

func setAttachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}
