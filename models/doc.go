// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines data types shared across the API.

# Request Types

Wizard and landing page inputs:

  - SignUpRequest: full_name, email
  - SelectAnimalRequest: animal id from the catalog
  - SelectTierRequest: tier id from the catalog
  - WaitlistRequest: email, name, country
  - EarlyAccessRequest: full_name, email

# Store Rows

Rows written to the external store, one type per table:

  - User → users
  - GeneratedPhoto → generated_photos
  - Purchase → purchases
  - WaitingListEntry → waiting_list

# Catalogs

The animal and pricing tier catalogs are fixed:

	for _, a := range models.Animals() { ... }
	tier, ok := models.FindTier("print")

Accessors return copies so callers cannot mutate the catalog.

# Wizard Views

WizardView is what the front-end renders. Only the slice for the current
step is populated:

	{
	  "step": "upload",
	  "steps": [{"step": "signup", "label": "Sign Up", "completed": true}, ...],
	  "upload": {"full_name": "Jane Doe", "can_continue": false}
	}

# Error Response

All errors return consistent JSON:

	{
	  "error": "Bad Request",
	  "message": "email is required"
	}
*/
package models
