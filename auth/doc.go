// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides token generation and hashing utilities.

There are no user accounts. Tokens only tie a browser to its wizard
session.

# Session Tokens

Session tokens are random 24-byte (192-bit) secrets:

	token, err := auth.GenerateSessionToken()

Tokens are URL-safe base64 encoded without padding, so they can travel in
the X-Session-Token header or a query parameter. ValidateSessionToken
rejects anything of the wrong shape before a session lookup.

# IP Hashing

Waiting-list leads store a salted hash of the client address instead of
the address itself:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
