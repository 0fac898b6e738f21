// Package lambdahandler adapts the authorizer to the gateway's native token
// authorizer invocation.
package lambdahandler

import (
	"context"

	"github.com/aws/aws-lambda-go/events"

	appauthorizer "github.com/cukaracha/hrspwr-sub000/internal/app/authorizer"
	"github.com/cukaracha/hrspwr-sub000/internal/domain/authorizer"
)

type Handler struct {
	authorizerService appauthorizer.Service
}

func New(authorizerService appauthorizer.Service) *Handler {
	return &Handler{
		authorizerService: authorizerService,
	}
}

// Handle never returns an error: returning one from an authorizer surfaces a
// 500 to the caller instead of the Deny the service already produced.
func (h *Handler) Handle(
	ctx context.Context,
	event events.APIGatewayCustomAuthorizerRequest,
) (events.APIGatewayCustomAuthorizerResponse, error) {
	resp := h.authorizerService.Authorize(ctx, authorizer.AuthorizerRequest{
		Type:               event.Type,
		AuthorizationToken: event.AuthorizationToken,
		MethodArn:          event.MethodArn,
	})

	return toGatewayResponse(resp), nil
}

func toGatewayResponse(resp authorizer.AuthorizerResponse) events.APIGatewayCustomAuthorizerResponse {
	statements := make([]events.IAMPolicyStatement, 0, len(resp.PolicyDocument.Statement))
	for _, st := range resp.PolicyDocument.Statement {
		statements = append(statements, events.IAMPolicyStatement{
			Action:   []string{st.Action},
			Effect:   st.Effect,
			Resource: []string{st.Resource},
		})
	}

	out := events.APIGatewayCustomAuthorizerResponse{
		PrincipalID: resp.PrincipalID,
		PolicyDocument: events.APIGatewayCustomAuthorizerPolicy{
			Version:   resp.PolicyDocument.Version,
			Statement: statements,
		},
	}

	if len(resp.Context) > 0 {
		out.Context = make(map[string]any, len(resp.Context))
		for k, v := range resp.Context {
			out.Context[k] = v
		}
	}

	return out
}
