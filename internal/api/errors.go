package api

import "errors"

// Error taxonomy of the facade. Every backend maps its failures onto these
// sentinels so callers can discriminate with errors.Is: an auth failure is
// resolved by the refresh coordinator, everything else surfaces to the UI.
var (
	// ErrNetwork is a transport-level failure. Retriable by user action only.
	ErrNetwork = errors.New("network failure")
	// ErrAuthFailed means the access token is expired, invalid or missing.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrInvalidCredentials means a login was rejected. Not retried.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrConflict means a registration hit an already-used email.
	ErrConflict = errors.New("already exists")
	// ErrValidation means malformed create/update input.
	ErrValidation = errors.New("validation")
	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)
