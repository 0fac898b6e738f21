package authorizer_test

import (
	"testing"

	"github.com/cukaracha/hrspwr-sub000/internal/domain/authorizer"
)

func TestWildcardScope(t *testing.T) {
	tests := []struct {
		name      string
		methodArn string
		want      string
	}{
		{
			name:      "specific method and resource",
			methodArn: "arn:aws:execute-api:us-east-1:123:abc123/dev/POST/assignments",
			want:      "abc123/dev/*/*",
		},
		{
			name:      "deep resource path",
			methodArn: "arn:aws:execute-api:us-east-1:123:abc123/prod/GET/vehicles/42/photos",
			want:      "abc123/prod/*/*",
		},
		{
			name:      "not an arn",
			methodArn: "garbage",
			want:      "*",
		},
		{
			name:      "arn without stage",
			methodArn: "arn:aws:execute-api:us-east-1:123:abc123",
			want:      "*",
		},
		{
			name:      "empty",
			methodArn: "",
			want:      "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authorizer.WildcardScope(tt.methodArn); got != tt.want {
				t.Errorf("WildcardScope(%q) = %q, want %q", tt.methodArn, got, tt.want)
			}
		})
	}
}

func TestIssuePolicy_Allow(t *testing.T) {
	claims := &authorizer.VerifiedClaims{
		Sub:      "user-123",
		Email:    "mechanic@example.com",
		Username: "mechanic",
		Groups:   []string{"admin", "mechanics"},
	}
	decision := authorizer.AccessDecision{Allow: true, Groups: claims.Groups}

	resp := authorizer.IssuePolicy(
		"user-123",
		decision,
		"arn:aws:execute-api:us-east-1:123:abc123/dev/POST/assignments",
		claims,
	)

	if resp.PrincipalID != "user-123" {
		t.Errorf("principal = %q, want user-123", resp.PrincipalID)
	}
	if got := resp.PolicyDocument.Version; got != "2012-10-17" {
		t.Errorf("version = %q", got)
	}
	if len(resp.PolicyDocument.Statement) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(resp.PolicyDocument.Statement))
	}

	st := resp.PolicyDocument.Statement[0]
	if st.Effect != authorizer.EffectAllow {
		t.Errorf("effect = %q, want Allow", st.Effect)
	}
	if st.Action != "execute-api:Invoke" {
		t.Errorf("action = %q", st.Action)
	}
	if st.Resource != "abc123/dev/*/*" {
		t.Errorf("resource = %q, want the wildcard scope, not the literal method", st.Resource)
	}

	if resp.Context["userId"] != "user-123" {
		t.Errorf("context userId = %q", resp.Context["userId"])
	}
	if resp.Context["groups"] != "admin,mechanics" {
		t.Errorf("context groups = %q", resp.Context["groups"])
	}
	if resp.Context["email"] != "mechanic@example.com" {
		t.Errorf("context email = %q", resp.Context["email"])
	}
	if resp.Context["username"] != "mechanic" {
		t.Errorf("context username = %q", resp.Context["username"])
	}
}

func TestIssuePolicy_AllowWithoutOptionalClaims(t *testing.T) {
	claims := &authorizer.VerifiedClaims{
		Sub:    "user-123",
		Groups: []string{"admin"},
	}

	resp := authorizer.IssuePolicy(
		"user-123",
		authorizer.AccessDecision{Allow: true, Groups: claims.Groups},
		"arn:aws:execute-api:us-east-1:123:abc123/dev/GET/garage",
		claims,
	)

	if _, ok := resp.Context["email"]; ok {
		t.Error("empty email must not appear in context")
	}
	if _, ok := resp.Context["username"]; ok {
		t.Error("empty username must not appear in context")
	}
}

func TestIssuePolicy_DenyCarriesNoContext(t *testing.T) {
	claims := &authorizer.VerifiedClaims{
		Sub:    "user-456",
		Email:  "viewer@example.com",
		Groups: []string{"viewers"},
	}

	resp := authorizer.IssuePolicy(
		"user-456",
		authorizer.AccessDecision{Allow: false, Groups: claims.Groups},
		"arn:aws:execute-api:us-east-1:123:abc123/dev/POST/assignments",
		claims,
	)

	if resp.PolicyDocument.Statement[0].Effect != authorizer.EffectDeny {
		t.Errorf("effect = %q, want Deny", resp.PolicyDocument.Statement[0].Effect)
	}
	if resp.Context != nil {
		t.Errorf("deny must not leak claims, got context %v", resp.Context)
	}
	if resp.PolicyDocument.Statement[0].Resource != "abc123/dev/*/*" {
		t.Errorf("deny resource = %q, want the same wildcard shape as allow", resp.PolicyDocument.Statement[0].Resource)
	}
}
