// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "rentflow/internal/common/errors"
	"rentflow/internal/facade"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req facade.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewValidationError("malformed request body", err.Error()))
		return
	}

	app, err := s.facade.SubmitApplication(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	app, err := s.facade.Accept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	app, err := s.facade.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	app, err := s.facade.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleListByProperty(w http.ResponseWriter, r *http.Request) {
	apps, err := s.facade.ListByProperty(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleListByLandlord(w http.ResponseWriter, r *http.Request) {
	apps, err := s.facade.ListByLandlord(r.Context(), chi.URLParam(r, "landlordID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleListByAgent(w http.ResponseWriter, r *http.Request) {
	apps, err := s.facade.ListByAgent(r.Context(), chi.URLParam(r, "agentID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleListByTenant(w http.ResponseWriter, r *http.Request) {
	apps, err := s.facade.ListByTenant(r.Context(), chi.URLParam(r, "tenantUserID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleSendToLandlord(w http.ResponseWriter, r *http.Request) {
	result, err := s.facade.SendAcceptedToLandlord(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSendToBackgroundCheck(w http.ResponseWriter, r *http.Request) {
	result, err := s.facade.SendApprovedToBackgroundCheck(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSendToFinalReview(w http.ResponseWriter, r *http.Request) {
	result, err := s.facade.SendPassedToFinalReview(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	result, err := s.facade.Finalize(r.Context(), chi.URLParam(r, "propertyID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	if code == "" {
		code = "INTERNAL"
	}

	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeValidationFailed, apperrors.ErrCodeInvalidBatchSize:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeUnsupportedTransition, apperrors.ErrCodeBatchConflict, apperrors.ErrCodeVersionConflict:
		status = http.StatusConflict
	}

	resp := errorResponse{Code: string(code), Message: err.Error()}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		resp.Message = appErr.Message
		resp.Details = appErr.Details
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{"error": err})
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
