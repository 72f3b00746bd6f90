// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Animal Portrait API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(st, sessions, cfg)

# Endpoints

Health:

	GET /health

Wizard (requires X-Session-Token or ?session=):

	POST /sessions                  - Start a wizard session
	GET  /wizard                    - Current step and progress bar
	POST /wizard/back               - Previous step
	POST /wizard/reset              - Start over
	POST /wizard/signup             - Store the user
	POST /wizard/photo              - Upload a photo (multipart "photo")
	POST /wizard/photo/continue     - Commit the photo
	GET  /photos/{id}               - Uploaded photo bytes
	POST /wizard/animal             - Select an animal
	POST /wizard/animal/continue    - Commit the animal, start generation
	GET  /wizard/generation         - Generation snapshot
	GET  /wizard/generation/stream  - Generation snapshots over websocket
	POST /wizard/generation/retry   - Retry a failed generation
	POST /wizard/tier               - Select a pricing tier
	POST /wizard/purchase           - Pay for the selected tier
	GET  /wizard/download           - Purchased image as an attachment

Landing pages (public):

	POST /waitlist     - Join the waiting list
	POST /early-access - Sign up for early access

Catalogs (public):

	GET /catalog/animals
	GET /catalog/tiers

# Handler Initialization

The router creates handler instances with dependency injection:

	wizardHandler := handlers.NewWizardHandler(sessions, cfg)
	leadHandler := handlers.NewLeadHandler(st, cfg)

Wizard handlers reach the store through their sessions; lead handlers
write to it directly.
*/
package router
