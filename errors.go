package doorman

import "errors"

var (
	// ErrMissingSession is returned when no credential is presented and
	// the request carries no session identifier.
	ErrMissingSession = errors.New("doorman: missing session identifier")

	// ErrAccountRevoked is returned when a valid credential resolves to
	// an administratively disabled account. Re-authenticating is futile.
	ErrAccountRevoked = errors.New("doorman: account revoked")

	// ErrDemoLimitReached is returned when a demo session has exhausted
	// its quota for the current window.
	ErrDemoLimitReached = errors.New("doorman: demo limit reached")

	// ErrRoleDenied is returned when a resolved role lacks permission for
	// the requested operation.
	ErrRoleDenied = errors.New("doorman: role denied")

	// ErrSessionWrite is returned when persisting a demo session
	// creation or increment fails. Lost writes would under-count usage,
	// so they are surfaced instead of swallowed.
	ErrSessionWrite = errors.New("doorman: session write failed")

	// ErrProviderUnavailable is returned when the identity provider
	// fails during the mandatory revocation check.
	ErrProviderUnavailable = errors.New("doorman: identity provider unavailable")
)
