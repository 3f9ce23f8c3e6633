package server

import (
	"encoding/json"
	"net/http"

	"fcaengine/pkg/types"
)

func (s *Service) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

var statusByCode = map[types.ErrorCode]int{
	types.CodeValidation:        http.StatusBadRequest,
	types.CodeNotFound:          http.StatusNotFound,
	types.CodeInvalidTransition: http.StatusConflict,
	types.CodeLockedAssessment:  http.StatusConflict,
	types.CodeIncompleteData:    http.StatusConflict,
	types.CodeNotReady:          http.StatusConflict,
	types.CodeInProgress:        http.StatusConflict,
	types.CodeRender:            http.StatusBadGateway,
}

// writeError maps engine errors onto HTTP statuses. Infrastructure errors
// are logged and reported without detail.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := types.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		s.writeErrorResponse(w, http.StatusInternalServerError, "internal_error", "an internal error occurred")
		return
	}

	s.writeErrorResponse(w, status, string(code), err.Error())
}

func (s *Service) decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return types.WrapError(types.CodeValidation, err, "invalid request body")
	}
	return nil
}
