package authorizer

import (
	"context"

	"github.com/cukaracha/hrspwr-sub000/internal/domain/authorizer"
	"github.com/cukaracha/hrspwr-sub000/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
)

type Service interface {
	Authorize(ctx context.Context, req authorizer.AuthorizerRequest) authorizer.AuthorizerResponse
}

type service struct {
	domainService *authorizer.Service
}

func NewService(domainService *authorizer.Service) Service {
	return &service{
		domainService: domainService,
	}
}

func (s *service) Authorize(ctx context.Context, req authorizer.AuthorizerRequest) authorizer.AuthorizerResponse {
	ctx, span := tracer.Start(ctx, "app.authorizer.Authorize")
	defer span.End()

	span.SetAttributes(
		attribute.String("authz.method_arn", req.MethodArn),
	)

	resp := s.domainService.Authorize(ctx, req)

	effect := authorizer.EffectDeny
	if len(resp.PolicyDocument.Statement) > 0 {
		effect = resp.PolicyDocument.Statement[0].Effect
	}
	span.SetAttributes(
		attribute.String("authz.effect", effect),
		attribute.String("authz.principal", resp.PrincipalID),
	)

	return resp
}
