package auth

import "errors"

var (
	// ErrInvalidToken indicates a structurally broken or otherwise unusable credential.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired indicates the credential's validity window has passed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrBadSignature indicates the presented signature does not match.
	ErrBadSignature = errors.New("auth: bad signature")
	// ErrUnverifiedIssuer indicates an issuer or audience mismatch.
	ErrUnverifiedIssuer = errors.New("auth: unverified issuer")
	// ErrUnauthenticated indicates no valid identity could be established.
	ErrUnauthenticated = errors.New("auth: unauthenticated")
)
