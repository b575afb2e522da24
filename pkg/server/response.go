package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	perrors "github.com/matzehuels/pipemerge/pkg/errors"
)

// ErrorBody is the JSON envelope of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	switch perrors.GetCode(err) {
	case perrors.ErrCodeMalformedInput, perrors.ErrCodeInvalidInput, perrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case perrors.ErrCodeAssignmentInfeasible:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an error response. Uncoded errors are reported as
// INTERNAL_ERROR without leaking their message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	code := perrors.GetCode(err)
	msg := perrors.UserMessage(err)
	if code == "" || code == perrors.ErrCodeInternal {
		s.logger.Error("request failed", "request", middleware.GetReqID(r.Context()), "error", err)
		code = perrors.ErrCodeInternal
		msg = "internal error"
	}
	writeError(w, status, string(code), msg)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
