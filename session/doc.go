// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session keeps wizard sessions and uploaded photos in memory.

# Sessions

A Manager hands out sessions keyed by a random token:

	s, _ := sessions.Create()
	s, err := sessions.Get(token) // ErrSessionNotFound when unknown or expired

Every Get refreshes the session. Run sweeps sessions that have been idle
longer than the TTL; sweeping cancels their generation and drops their
photos.

# Locking

Each session serialises its own changes with a mutex. Store calls (sign-up,
purchase) run with the mutex released and a busy flag set, so a second
submission for the same step gets ErrBusy instead of a second row. Lock
order is session before manager.

Reset starts a new run. A store call begun before it still finishes, but
its result is dropped and the caller gets ErrReset; the fresh wizard is
never busy on its behalf. Generation jobs carry a sequence number for the
same reason, so a job that finishes after being stopped or replaced does
not move the wizard.

# Errors

Step errors (ErrWrongStep, ErrNotReady, ErrNoBack, ...) are conflicts with
the current step. A *StoreError carries a failed insert whose message is
shown to the user.
*/
package session
