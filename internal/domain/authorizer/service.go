package authorizer

import (
	"context"
	"strings"

	"log/slog"

	"github.com/cukaracha/hrspwr-sub000/pkg/logger"
)

// FallbackPrincipal is used when no principal could be established, i.e. the
// request never got past token verification.
const FallbackPrincipal = "user"

// TokenVerifier decodes a compact token, resolves its signing key and returns
// the verified claims. Implementations classify failures onto the package
// error taxonomy (ErrTokenMalformed, ErrKeyUnavailable, ErrSignatureInvalid,
// ErrInvalidClaims).
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*VerifiedClaims, error)
}

// Service drives one authorization request end to end: extract bearer token,
// verify, decide, issue policy. It never returns an error; every failure mode
// collapses into a well-formed Deny so the gateway always receives a policy
// it can cache. The external contract is binary and deliberately does not
// reveal why a request was rejected.
type Service struct {
	verifier TokenVerifier
	engine   DecisionEngine
}

func NewService(verifier TokenVerifier, engine DecisionEngine) *Service {
	return &Service{
		verifier: verifier,
		engine:   engine,
	}
}

func (s *Service) Authorize(ctx context.Context, req AuthorizerRequest) (resp AuthorizerResponse) {
	// Fail closed: nothing may escape this call as a panic or error.
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "authorizer panicked, denying",
				slog.Any("panic", r),
			)
			resp = s.deny(req.MethodArn)
		}
	}()

	raw, ok := bearerToken(req.AuthorizationToken)
	if !ok {
		logger.WarnContext(ctx, "no bearer token in request")
		return s.deny(req.MethodArn)
	}

	claims, err := s.verifier.Verify(ctx, raw)
	if err != nil {
		logger.WarnContext(ctx, "token verification failed",
			slog.String("error", err.Error()),
		)
		return s.deny(req.MethodArn)
	}

	// A verified token that fails the access check still gets a normally
	// issued Deny under its own principal, unlike the verification-failure
	// path above.
	decision := s.engine.Decide(claims.Groups)
	if !decision.Allow {
		logger.InfoContext(ctx, "access denied",
			slog.String("sub", claims.Sub),
			slog.Int("groups", len(claims.Groups)),
		)
	}

	return IssuePolicy(claims.Sub, decision, req.MethodArn, claims)
}

func (s *Service) deny(methodArn string) AuthorizerResponse {
	return IssuePolicy(FallbackPrincipal, AccessDecision{}, methodArn, nil)
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}

	return token, true
}
