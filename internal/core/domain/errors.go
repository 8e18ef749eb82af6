package domain

import "errors"

var (
	// ErrAlreadyActed is returned when a role tries to act twice on a
	// request, or on a request that has already reached a terminal state.
	// Rejected locally, never reaches the network.
	ErrAlreadyActed = errors.New("role has already acted on this request")

	// ErrAuthExpired marks an authorization failure that survived the one
	// permitted renewal attempt. The session itself is still valid.
	ErrAuthExpired = errors.New("access credential rejected")

	// ErrSessionExpired marks a failed renewal. The credential store has
	// been cleared and the caller must force re-authentication.
	ErrSessionExpired = errors.New("session expired, authentication required")

	// ErrInvalidCredentials is returned when the token endpoint rejects a
	// login attempt.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNoCredential is returned by a credential store when the requested
	// credential is absent.
	ErrNoCredential = errors.New("credential not present")

	// ErrNotFound is returned when a request id does not exist upstream.
	ErrNotFound = errors.New("intake request not found")

	// ErrUpstream marks a server-side failure of the clinic API.
	ErrUpstream = errors.New("clinic API unavailable")
)
