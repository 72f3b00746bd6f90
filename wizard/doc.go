// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package wizard sequences the portrait purchase flow.

# Steps

The wizard is strictly linear:

	signup → upload → choose → generate → purchase → (reset) signup

Back is available from upload, choose and generate and never clears data.

# Controller

A Controller holds the current step and everything collected so far:

	c := wizard.NewController()
	c.Advance(wizard.StepUpload, wizard.Data{User: &user})
	c.Back()
	c.Reset()

Advance performs no validation; the step handlers validate before calling
it. Each step reads its input through a slice of the state
(UploadSlice, GenerateSlice, PurchaseSlice) rather than the whole State.
*/
package wizard
