// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/danielhkuo/animal-portrait/cliparse"
	"github.com/danielhkuo/animal-portrait/middleware"
	"github.com/danielhkuo/animal-portrait/models"
	"github.com/danielhkuo/animal-portrait/session"
	"github.com/danielhkuo/animal-portrait/store"
)

type WizardHandler struct {
	sessions *session.Manager
	cfg      cliparse.Config
}

func NewWizardHandler(sessions *session.Manager, cfg cliparse.Config) *WizardHandler {
	return &WizardHandler{
		sessions: sessions,
		cfg:      cfg,
	}
}

// session resolves the caller's session, answering 404 when there is none
func (h *WizardHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	token := middleware.SessionToken(r)
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Session token required")
		return nil, false
	}

	s, err := h.sessions.Get(token)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return s, true
}

// writeSessionError maps a session error to its HTTP response
func writeSessionError(w http.ResponseWriter, err error) {
	var storeErr *session.StoreError
	if errors.As(err, &storeErr) {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrDuplicate) {
			status = http.StatusConflict
		}
		middleware.ErrorResponse(w, status, store.Message(storeErr.Err))
		return
	}

	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrPhotoNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrUnknownAnimal), errors.Is(err, session.ErrUnknownTier):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrWrongStep),
		errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrReset),
		errors.Is(err, session.ErrNotReady),
		errors.Is(err, session.ErrNoBack),
		errors.Is(err, session.ErrNotFailed),
		errors.Is(err, session.ErrAlreadyPurchased),
		errors.Is(err, session.ErrNotPurchased):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		slog.Error("wizard request failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// CreateSession handles POST /sessions
func (h *WizardHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Create()
	if err != nil {
		slog.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionToken: s.Token,
		Wizard:       s.View(),
	})
}

// GetWizard handles GET /wizard
func (h *WizardHandler) GetWizard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// SignUp handles POST /wizard/signup
func (h *WizardHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SignUpRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	if fullName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Full name is required")
		return
	}
	if msg := validateEmail(email); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.SignUp(r.Context(), fullName, email); err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// validateEmail returns a user-facing message when email is not a bare address
func validateEmail(email string) string {
	if email == "" {
		return "Email is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "Email address is invalid"
	}
	return ""
}

// ContinueUpload handles POST /wizard/photo/continue
func (h *WizardHandler) ContinueUpload(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.ContinueUpload(); err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// SelectAnimal handles POST /wizard/animal
func (h *WizardHandler) SelectAnimal(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SelectAnimalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := s.SelectAnimal(req.Animal); err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// ContinueChoose handles POST /wizard/animal/continue
func (h *WizardHandler) ContinueChoose(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.ContinueChoose(); err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// GetGeneration handles GET /wizard/generation
func (h *WizardHandler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	job, err := s.Generation()
	if err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, job.Snapshot())
}

// RetryGeneration handles POST /wizard/generation/retry
func (h *WizardHandler) RetryGeneration(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.RetryGeneration(); err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// SelectTier handles POST /wizard/tier
func (h *WizardHandler) SelectTier(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SelectTierRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := s.SelectTier(req.Tier); err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// Purchase handles POST /wizard/purchase
func (h *WizardHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Purchase(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// Back handles POST /wizard/back
func (h *WizardHandler) Back(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if _, err := s.Back(); err != nil {
		writeSessionError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// Reset handles POST /wizard/reset
func (h *WizardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	s.Reset()
	slog.Info("wizard reset")

	middleware.JSONResponse(w, http.StatusOK, s.View())
}
