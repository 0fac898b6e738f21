package authorizer

import "strings"

const methodArnFields = 6

// WildcardScope collapses a specific method ARN into the scope covering every
// method and resource under the same API and stage. The gateway replays a
// cached policy for any call matching the cache key, so echoing the literal
// method+resource back would leave every other endpoint either unauthorized
// or wrongly denied for the cache lifetime.
//
// "arn:aws:execute-api:us-east-1:123:abc123/dev/POST/assignments" scopes to
// "abc123/dev/*/*".
func WildcardScope(methodArn string) string {
	parts := strings.SplitN(methodArn, ":", methodArnFields)
	if len(parts) < methodArnFields {
		return "*"
	}

	segs := strings.Split(parts[methodArnFields-1], "/")
	if len(segs) < 2 || segs[0] == "" || segs[1] == "" {
		return "*"
	}

	return segs[0] + "/" + segs[1] + "/*/*"
}

// IssuePolicy builds the gateway policy for a decided request. Allow and Deny
// share the same document shape; only the effect and the context differ. A
// Deny carries no claim-derived context so nothing about a rejected principal
// leaks back through the gateway.
func IssuePolicy(
	principalID string,
	decision AccessDecision,
	methodArn string,
	claims *VerifiedClaims,
) AuthorizerResponse {
	effect := EffectDeny
	if decision.Allow {
		effect = EffectAllow
	}

	resp := AuthorizerResponse{
		PrincipalID: principalID,
		PolicyDocument: PolicyDocument{
			Version: PolicyVersion,
			Statement: []Statement{
				{
					Action:   InvokeAction,
					Effect:   effect,
					Resource: WildcardScope(methodArn),
				},
			},
		},
	}

	if decision.Allow && claims != nil {
		// The transport contract only carries string values.
		ctx := map[string]string{
			"userId": claims.Sub,
			"groups": strings.Join(decision.Groups, ","),
		}
		if claims.Email != "" {
			ctx["email"] = claims.Email
		}
		if claims.Username != "" {
			ctx["username"] = claims.Username
		}
		resp.Context = ctx
	}

	return resp
}
