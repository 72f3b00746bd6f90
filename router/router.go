// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/animal-portrait/cliparse"
	"github.com/danielhkuo/animal-portrait/handlers"
	"github.com/danielhkuo/animal-portrait/middleware"
	"github.com/danielhkuo/animal-portrait/session"
	"github.com/danielhkuo/animal-portrait/store"
)

func NewRouter(st store.Store, sessions *session.Manager, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	wizardHandler := handlers.NewWizardHandler(sessions, cfg)
	leadHandler := handlers.NewLeadHandler(st, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Wizard session and navigation
	mux.HandleFunc("POST /sessions", middleware.WithLogging(wizardHandler.CreateSession))
	mux.HandleFunc("GET /wizard", middleware.WithLogging(wizardHandler.GetWizard))
	mux.HandleFunc("POST /wizard/back", middleware.WithLogging(wizardHandler.Back))
	mux.HandleFunc("POST /wizard/reset", middleware.WithLogging(wizardHandler.Reset))

	// Sign-up and upload steps
	mux.HandleFunc("POST /wizard/signup", middleware.WithLogging(wizardHandler.SignUp))
	mux.HandleFunc("POST /wizard/photo", middleware.WithLogging(wizardHandler.UploadPhoto))
	mux.HandleFunc("POST /wizard/photo/continue", middleware.WithLogging(wizardHandler.ContinueUpload))
	mux.HandleFunc("GET /photos/{id}", middleware.WithLogging(wizardHandler.GetPhoto))

	// Choose and generate steps
	mux.HandleFunc("POST /wizard/animal", middleware.WithLogging(wizardHandler.SelectAnimal))
	mux.HandleFunc("POST /wizard/animal/continue", middleware.WithLogging(wizardHandler.ContinueChoose))
	mux.HandleFunc("GET /wizard/generation", middleware.WithLogging(wizardHandler.GetGeneration))
	mux.HandleFunc("GET /wizard/generation/stream", middleware.WithLogging(wizardHandler.StreamGeneration))
	mux.HandleFunc("POST /wizard/generation/retry", middleware.WithLogging(wizardHandler.RetryGeneration))

	// Purchase step
	mux.HandleFunc("POST /wizard/tier", middleware.WithLogging(wizardHandler.SelectTier))
	mux.HandleFunc("POST /wizard/purchase", middleware.WithLogging(wizardHandler.Purchase))
	mux.HandleFunc("GET /wizard/download", middleware.WithLogging(wizardHandler.Download))

	// Landing page lead capture
	mux.HandleFunc("POST /waitlist", middleware.WithLogging(leadHandler.JoinWaitlist))
	mux.HandleFunc("POST /early-access", middleware.WithLogging(leadHandler.JoinEarlyAccess))

	// Catalogs
	mux.HandleFunc("GET /catalog/animals", handlers.ListAnimals)
	mux.HandleFunc("GET /catalog/tiers", handlers.ListTiers)

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("animal-portrait API v1"))
	})

	return mux
}
