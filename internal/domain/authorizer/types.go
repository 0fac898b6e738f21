package authorizer

import "time"

// AuthorizerRequest is the inbound event from the gateway: the raw bearer
// credential and the ARN of the method the caller is trying to invoke.
type AuthorizerRequest struct {
	Type               string `json:"type,omitempty"`
	AuthorizationToken string `json:"authorizationToken"`
	MethodArn          string `json:"methodArn"`
}

// VerifiedClaims is the decoded, signature-verified token payload. A value of
// this type only exists after cryptographic verification and claim validation
// have both succeeded; nothing downstream ever sees unverified claims.
type VerifiedClaims struct {
	Sub       string
	Email     string
	Username  string
	Groups    []string
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessDecision is the outcome of the group-membership gate together with
// the groups that produced it.
type AccessDecision struct {
	Allow  bool
	Groups []string
}

const (
	PolicyVersion = "2012-10-17"
	InvokeAction  = "execute-api:Invoke"

	EffectAllow = "Allow"
	EffectDeny  = "Deny"
)

type Statement struct {
	Action   string `json:"Action"`
	Effect   string `json:"Effect"`
	Resource string `json:"Resource"`
}

type PolicyDocument struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// AuthorizerResponse is the policy handed back to the gateway. The gateway
// caches it per principal for its configured TTL and replays it for every
// matching call in that window, so the resource scope must cover the whole
// API surface rather than the single method that triggered the check.
type AuthorizerResponse struct {
	PrincipalID    string            `json:"principalId"`
	PolicyDocument PolicyDocument    `json:"policyDocument"`
	Context        map[string]string `json:"context,omitempty"`
}
