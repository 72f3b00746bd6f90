// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# CORS Middleware

Enable cross-origin requests for the wizard front-end:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins, mux),
	}

An empty origin list echoes every origin. Allows methods GET, POST,
OPTIONS with headers Content-Type and X-Session-Token.

# Session Tokens

The wizard session travels in the X-Session-Token header. Clients that
cannot set headers (image tags, websockets) pass ?session= instead:

	token := middleware.SessionToken(r)

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.SignUpRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Waiting-list leads store a salted hash of it.
*/
package middleware
