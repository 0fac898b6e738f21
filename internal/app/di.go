// Package app assembles the domain services from configuration. Both the
// HTTP server and the Lambda entrypoint wire through here so the two
// deployments cannot drift apart.
package app

import (
	"fmt"

	appauthorizer "github.com/cukaracha/hrspwr-sub000/internal/app/authorizer"
	applookup "github.com/cukaracha/hrspwr-sub000/internal/app/lookup"
	"github.com/cukaracha/hrspwr-sub000/internal/config"
	domainauthorizer "github.com/cukaracha/hrspwr-sub000/internal/domain/authorizer"
	domainlookup "github.com/cukaracha/hrspwr-sub000/internal/domain/lookup"
	"github.com/cukaracha/hrspwr-sub000/internal/infra/cache"
	"github.com/cukaracha/hrspwr-sub000/internal/infra/jwks"
	"github.com/cukaracha/hrspwr-sub000/internal/infra/partscatalog"
	"github.com/cukaracha/hrspwr-sub000/internal/infra/verifier"
)

// NewAuthorizerService builds the token authorizer: one key resolver per
// process, a verifier pinned to the configured issuer, and the admin-group
// decision gate.
func NewAuthorizerService(cfg *config.Config) appauthorizer.Service {
	resolver := jwks.NewResolver(jwks.Config{
		URL:          cfg.JWKSURL(),
		CacheTTL:     cfg.Auth.KeyCacheTTL,
		FetchTimeout: cfg.Auth.JWKSFetchTimeout,
	})

	domainService := domainauthorizer.NewService(
		verifier.New(resolver, cfg.Issuer()),
		domainauthorizer.NewDecisionEngine(cfg.Auth.AdminGroup),
	)

	return appauthorizer.NewService(domainService)
}

// NewLookupService builds the catalog lookup service, or returns nil when no
// catalog API key is configured. The redis cache is optional; without it
// every lookup goes upstream.
func NewLookupService(cfg *config.Config) (applookup.Service, error) {
	if cfg.Lookup.RapidAPIKey == "" {
		return nil, nil
	}

	catalog, err := partscatalog.NewClient(cfg.Lookup.RapidAPIKey)
	if err != nil {
		return nil, err
	}

	var resultCache cache.ResultCache
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(cfg.Redis.URL, cfg.Redis.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		resultCache = cache.NewResultCache(client)
	}

	domainService := domainlookup.NewService(catalog, resultCache, cfg.Lookup.CacheTTL)
	return applookup.NewService(domainService), nil
}
