// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Animal Portrait API server.

Animal Portrait walks a visitor through a five step purchase wizard
(sign up → upload a photo → choose an animal → generate → purchase) and
captures leads from two landing pages. Generation and payment are
simulated; every step that completes writes a row to the store.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=portraits.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded first; real environment
variables win over it.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL connection string or SQLite path

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - ALLOWED_ORIGINS (-origins): comma separated CORS origins (default: any)
  - LEAD_IP_SALT (-lead-salt): secret for hashing lead IP addresses
  - MAX_UPLOAD_BYTES: photo size limit (default: 10 MiB)
  - SESSION_TTL: idle time before a wizard session is dropped (default: 1h)
  - GENERATE_INTERVAL, GENERATE_DURATION, GENERATE_SETTLE, PURCHASE_DELAY:
    simulated timings (defaults: 300ms, 3s, 500ms, 2s)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (wizard steps, photos, leads, catalogs)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - session: In-memory wizard sessions and uploaded photos
  - wizard: Step sequencing and accumulated wizard state
  - generation: Simulated generation jobs with progress reporting
  - store: Inserts into the external tables
  - models: Request/response types and the fixed catalogs
  - auth: Token generation and IP hashing
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
