// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file can be loaded first; values already in the environment win:

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type (sqlite or postgres)
	-origins    Allowed CORS / websocket origins
	-lead-salt  Salt for hashing waiting-list client IPs

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p (default 3318)
	DATABASE_URL     → -d (required)
	DATABASE_TYPE    → -t (default sqlite)
	ALLOWED_ORIGINS  → -origins
	LEAD_IP_SALT     → -lead-salt

Environment only:

	MAX_UPLOAD_BYTES   photo size limit (default 10 MiB)
	SESSION_TTL        idle wizard session lifetime (default 1h)
	GENERATE_INTERVAL  progress tick (default 300ms)
	GENERATE_DURATION  simulated generation time (default 3s)
	GENERATE_SETTLE    pause at 100% before advancing (default 500ms)
	PURCHASE_DELAY     simulated payment time (default 2s)

CLI flags take precedence over environment variables.
*/
package cliparse
