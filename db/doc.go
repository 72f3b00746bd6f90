// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the backing database and creates its schema.

# Connections

Open selects the driver from the configured database type:

	conn, err := db.Open("postgres", "postgres://...")
	conn, err := db.Open("sqlite", "file:portrait.db")

SQLite connections are limited to one open connection and have foreign
keys enabled.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - users: Wizard sign-ups (full_name, email)
  - generated_photos: One row per finished generation
  - purchases: One row per simulated purchase
  - waiting_list: Leads from the two landing pages (email is unique)

# Relationships

	users 1──* generated_photos
	users 1──* purchases

user_id is nullable and set to NULL if the user row goes away.
*/
package db
