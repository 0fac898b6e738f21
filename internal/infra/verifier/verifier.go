// Package verifier checks bearer tokens against the issuer's signing keys.
package verifier

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cukaracha/hrspwr-sub000/internal/domain/authorizer"
)

var errMissingKid = errors.New("token header has no kid")

// KeyResolver resolves a key id to the issuer's public verification key.
type KeyResolver interface {
	Resolve(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// poolClaims is the closed shape of the identity pool's token payload.
// Nothing here is trusted until the parser has verified the signature.
type poolClaims struct {
	jwt.RegisteredClaims
	Email    string   `json:"email,omitempty"`
	Username string   `json:"cognito:username,omitempty"`
	Groups   []string `json:"cognito:groups,omitempty"`
}

// Verifier validates compact tokens: signature against a key resolved by kid,
// issuer against the configured expected issuer, expiry against call time.
// The verification algorithm is pinned to RS256; the token's self-declared
// alg header never selects it, which closes the algorithm-substitution hole.
type Verifier struct {
	resolver KeyResolver
	parser   *jwt.Parser
}

func New(resolver KeyResolver, expectedIssuer string) *Verifier {
	return &Verifier{
		resolver: resolver,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(expectedIssuer),
			jwt.WithExpirationRequired(),
		),
	}
}

func (v *Verifier) Verify(ctx context.Context, rawToken string) (*authorizer.VerifiedClaims, error) {
	claims := &poolClaims{}

	token, err := v.parser.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errMissingKid
		}
		return v.resolver.Resolve(ctx, kid)
	})
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, authorizer.ErrInvalidClaims
	}

	verified := &authorizer.VerifiedClaims{
		Sub:      claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
		Groups:   claims.Groups,
		Issuer:   claims.Issuer,
	}
	if len(claims.Audience) > 0 {
		verified.Audience = claims.Audience[0]
	}
	if claims.IssuedAt != nil {
		verified.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		verified.ExpiresAt = claims.ExpiresAt.Time
	}

	return verified, nil
}

// classify maps parser failures onto the domain taxonomy. Keyfunc errors
// surface under jwt.ErrTokenUnverifiable, so the missing-kid sentinel has to
// be checked before the resolver bucket.
func classify(err error) error {
	switch {
	case errors.Is(err, errMissingKid),
		errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", authorizer.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", authorizer.ErrKeyUnavailable, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", authorizer.ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", authorizer.ErrInvalidClaims, err)
	default:
		return fmt.Errorf("%w: %v", authorizer.ErrTokenMalformed, err)
	}
}
