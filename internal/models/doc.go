// Package models defines the captcha domain entities and their state
// machines.
//
// A Captcha moves from active to solved exactly once, through Solve. A
// VerificationToken moves from pending to activated exactly once, through
// Activate, which solves the bound captcha with the answer recorded when
// the token was created. Both entities carry a Version used by the stores
// for optimistic concurrency; the methods here never touch it.
package models
