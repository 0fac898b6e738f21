package authorizer

import "errors"

var (
	// ErrTokenMalformed indicates the token is absent, not decodable, or
	// missing a key id in its header.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrKeyUnavailable indicates the signing key could not be resolved from
	// the issuer's published key set.
	ErrKeyUnavailable = errors.New("signing key unavailable")

	// ErrSignatureInvalid indicates cryptographic verification failed.
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrInvalidClaims indicates an issuer mismatch or an expired token.
	ErrInvalidClaims = errors.New("token claims invalid")
)
