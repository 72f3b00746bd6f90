// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store writes wizard and landing page rows to the database.

# Tables

	CreateUser          → users            (returns the assigned id)
	SaveGeneratedPhoto  → generated_photos
	SavePurchase        → purchases
	JoinWaitingList     → waiting_list

The store is insert-only. Identifiers are random UUIDs.

# Errors

Unique violations on either driver are reported as ErrDuplicate:

	if errors.Is(err, store.ErrDuplicate) { ... }

Message extracts the text a user should see, e.g. the server message of a
*pq.Error.
*/
package store
