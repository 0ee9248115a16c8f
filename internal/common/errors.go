// Package common defines sentinel errors and small helpers shared by the
// captcha domain, its stores and the command-line front end. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Configuration errors, fatal at startup.
	ErrInvalidRangeFormat   = errors.New("invalid character range format")
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Captcha lifecycle rejections.
	ErrAlreadySolved        = errors.New("captcha already solved")
	ErrExpired              = errors.New("captcha timeout is over")
	ErrAlreadyActivated     = errors.New("verification token already activated")
	ErrNotYetActivated      = errors.New("verification token not yet activated")
	ErrAuthenticationFailed = errors.New("client authentication failed")
)

// Error kinds reported by Kind.
const (
	KindNotFound      = "not_found"
	KindConflict      = "conflict"
	KindRejected      = "rejected"
	KindInvalidConfig = "invalid_config"
	KindInternal      = "internal"
)

// Kind classifies err into one of the Kind* constants. Lifecycle rejections
// are client-visible, a conflict may be retried from a fresh read, anything
// unrecognised is internal.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrorNotFound):
		return KindNotFound
	case errors.Is(err, ErrVersionConflict):
		return KindConflict
	case errors.Is(err, ErrAlreadySolved),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrAlreadyActivated),
		errors.Is(err, ErrNotYetActivated),
		errors.Is(err, ErrAuthenticationFailed):
		return KindRejected
	case errors.Is(err, ErrInvalidRangeFormat),
		errors.Is(err, ErrInvalidConfiguration):
		return KindInvalidConfig
	default:
		return KindInternal
	}
}

// Rejection reasons reported by Reason.
const (
	ReasonAlreadySolved        = "already_solved"
	ReasonExpired              = "expired"
	ReasonAlreadyActivated     = "already_activated"
	ReasonNotYetActivated      = "not_yet_activated"
	ReasonAuthenticationFailed = "authentication_failed"
)

// Reason names the lifecycle rejection behind err, or returns "" when err
// is not a rejection.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrAuthenticationFailed):
		return ReasonAuthenticationFailed
	case errors.Is(err, ErrAlreadySolved):
		return ReasonAlreadySolved
	case errors.Is(err, ErrExpired):
		return ReasonExpired
	case errors.Is(err, ErrAlreadyActivated):
		return ReasonAlreadyActivated
	case errors.Is(err, ErrNotYetActivated):
		return ReasonNotYetActivated
	default:
		return ""
	}
}
