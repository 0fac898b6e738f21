package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cukaracha/hrspwr-sub000/internal/app"
	"github.com/cukaracha/hrspwr-sub000/internal/config"
	"github.com/cukaracha/hrspwr-sub000/pkg/logger"
	"github.com/cukaracha/hrspwr-sub000/pkg/otel"
	"github.com/cukaracha/hrspwr-sub000/pkg/tracer"
)

type Server struct {
	httpServer *http.Server
}

const (
	idleTimeoutMultiplier = 2
	serviceName           = "hrspwr-authorizer"
)

func NewServer(cfg *config.Config) (*Server, error) {
	logger.Init(cfg.Observability.LogLevel, cfg.Observability.LogFormat)

	otelCfg := otel.Config{
		ServiceName: serviceName,
		EndpointURL: cfg.Observability.TracingEndpointURL,
		Enabled:     cfg.Observability.TraceEnabled,
		SampleRatio: 1.0,
		Insecure:    true,
	}
	if err := tracer.InitTracer(serviceName, otelCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	authorizerService := app.NewAuthorizerService(cfg)

	lookupService, err := app.NewLookupService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup service: %w", err)
	}

	handler := NewHandler(authorizerService, lookupService)
	router := NewRouter(handler, cfg)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * idleTimeoutMultiplier,
	}

	return &Server{
		httpServer: httpServer,
	}, nil
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
