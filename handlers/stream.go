// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const streamWriteTimeout = 5 * time.Second

// acceptOptions restricts websocket origins to the configured CORS hosts
func (h *WizardHandler) acceptOptions() *websocket.AcceptOptions {
	if len(h.cfg.AllowedOrigins) == 0 {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}

	patterns := make([]string, 0, len(h.cfg.AllowedOrigins))
	for _, origin := range h.cfg.AllowedOrigins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return &websocket.AcceptOptions{OriginPatterns: patterns}
}

// StreamGeneration handles GET /wizard/generation/stream
// Pushes a snapshot after every progress change until the job ends.
func (h *WizardHandler) StreamGeneration(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	job, err := s.Generation()
	if err != nil {
		writeSessionError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, h.acceptOptions())
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// Clients never send anything; CloseRead handles control frames and
	// cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	snapshots, unsubscribe := job.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "generation ended")
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
			err := wsjson.Write(writeCtx, conn, snap)
			cancel()
			if err != nil {
				slog.Debug("generation stream closed", "error", err)
				return
			}
		}
	}
}
