// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the Animal Portrait API.

# Handler Types

Each handler is a struct with its dependencies and config:

  - WizardHandler: Wizard sessions, every step, photos and the progress stream
  - LeadHandler: Waiting-list and early-access landing pages

Handlers are created via constructor functions:

	wizardHandler := handlers.NewWizardHandler(sessions, cfg)
	leadHandler := handlers.NewLeadHandler(st, cfg)

The catalog endpoints are plain functions (ListAnimals, ListTiers).

# Wizard Flow

A visitor moves through five steps: signup → upload → choose → generate → purchase

	POST /sessions                → CreateSession (returns session_token)
	POST /wizard/signup           → SignUp (inserts into users)
	POST /wizard/photo            → UploadPhoto (multipart, images only)
	POST /wizard/photo/continue   → ContinueUpload
	POST /wizard/animal           → SelectAnimal
	POST /wizard/animal/continue  → ContinueChoose (starts generation)
	POST /wizard/purchase         → Purchase (inserts into purchases)

Every wizard endpoint answers with the current WizardView. The session
travels in the X-Session-Token header.

# Generation Progress

Poll the snapshot or subscribe over a websocket:

	GET /wizard/generation
	GET /wizard/generation/stream?session=...

The stream sends one JSON snapshot per change and closes normally once the
job has ended. A failed generation can be retried.

# Error Responses

All errors return JSON with error type and message:

	{"error": "Conflict", "message": "not available on the current step"}

Common status codes:

  - 400: Invalid input, unknown animal or tier
  - 401: Missing session token
  - 404: Session or photo not found
  - 409: Wrong step, step busy, not ready, duplicate lead email
  - 413: Photo too large
  - 415: Upload is not an image
  - 500: Store failure (message shown as the store reported it)
*/
package handlers
