// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/animal-portrait/auth"
	"github.com/danielhkuo/animal-portrait/cliparse"
	"github.com/danielhkuo/animal-portrait/middleware"
	"github.com/danielhkuo/animal-portrait/models"
	"github.com/danielhkuo/animal-portrait/store"
)

const (
	subscribedMessage = "Thanks for joining! We'll be in touch soon."
	duplicateMessage  = "This email is already on the list."
)

type LeadHandler struct {
	store store.Store
	cfg   cliparse.Config
}

func NewLeadHandler(st store.Store, cfg cliparse.Config) *LeadHandler {
	return &LeadHandler{
		store: st,
		cfg:   cfg,
	}
}

// JoinWaitlist handles POST /waitlist
func (h *LeadHandler) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	var req models.WaitlistRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	entry := models.WaitingListEntry{
		Email:   strings.TrimSpace(req.Email),
		Name:    strings.TrimSpace(req.Name),
		Country: strings.TrimSpace(req.Country),
		Source:  models.SourceWaitlist,
	}
	if entry.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Name is required")
		return
	}

	h.join(w, r, entry)
}

// JoinEarlyAccess handles POST /early-access
func (h *LeadHandler) JoinEarlyAccess(w http.ResponseWriter, r *http.Request) {
	var req models.EarlyAccessRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	entry := models.WaitingListEntry{
		Email:  strings.TrimSpace(req.Email),
		Name:   strings.TrimSpace(req.FullName),
		Source: models.SourceEarlyAccess,
	}
	if entry.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Full name is required")
		return
	}

	h.join(w, r, entry)
}

func (h *LeadHandler) join(w http.ResponseWriter, r *http.Request, entry models.WaitingListEntry) {
	if msg := validateEmail(entry.Email); msg != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, msg)
		return
	}

	if h.cfg.LeadIPSalt != "" {
		hash := auth.HashIP(middleware.GetClientIP(r), h.cfg.LeadIPSalt)
		entry.IPHash = &hash
	}

	id, err := h.store.JoinWaitingList(r.Context(), entry)
	if errors.Is(err, store.ErrDuplicate) {
		middleware.ErrorResponse(w, http.StatusConflict, duplicateMessage)
		return
	}
	if err != nil {
		slog.Error("failed to join waiting list", "error", err, "source", entry.Source)
		middleware.ErrorResponse(w, http.StatusInternalServerError, store.Message(err))
		return
	}

	slog.Info("lead captured", "lead_id", id, "source", entry.Source)

	middleware.JSONResponse(w, http.StatusCreated, models.LeadResponse{
		Status:  "subscribed",
		Message: subscribedMessage,
	})
}
