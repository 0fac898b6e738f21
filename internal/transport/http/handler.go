package http

import (
	"errors"
	"net/http"
	"strconv"

	"log/slog"

	appauthorizer "github.com/cukaracha/hrspwr-sub000/internal/app/authorizer"
	applookup "github.com/cukaracha/hrspwr-sub000/internal/app/lookup"
	"github.com/cukaracha/hrspwr-sub000/internal/domain/authorizer"
	"github.com/cukaracha/hrspwr-sub000/internal/domain/lookup"
	"github.com/cukaracha/hrspwr-sub000/pkg/logger"
	"github.com/cukaracha/hrspwr-sub000/pkg/tracer"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	authorizerService appauthorizer.Service
	lookupService     applookup.Service
}

func NewHandler(authorizerService appauthorizer.Service, lookupService applookup.Service) *Handler {
	return &Handler{
		authorizerService: authorizerService,
		lookupService:     lookupService,
	}
}

// Authorize serves the gateway authorizer contract over JSON. The response is
// always a policy, HTTP 200: an unreadable body is just another request that
// could not establish a principal, so it gets the fail-closed Deny rather
// than a transport-level error.
func (h *Handler) Authorize(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.Authorize")
	defer span.End()

	var req authorizer.AuthorizerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnContext(ctx, "unreadable authorizer request",
			slog.String("error", err.Error()),
		)
		req = authorizer.AuthorizerRequest{}
	}

	c.JSON(http.StatusOK, h.authorizerService.Authorize(ctx, req))
}

func (h *Handler) DecodeVIN(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.DecodeVIN")
	defer span.End()

	doc, err := h.lookupService.DecodeVIN(ctx, c.Param("vin"))
	if err != nil {
		if errors.Is(err, lookup.ErrInvalidVIN) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.ErrorContext(ctx, "vin decode failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "vin lookup unavailable"})
		return
	}

	c.Data(http.StatusOK, "application/json", doc)
}

func (h *Handler) Categories(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.Categories")
	defer span.End()

	vehicleID, err := strconv.Atoi(c.Param("vehicleId"))
	if err != nil || vehicleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vehicleId must be a positive integer"})
		return
	}

	groups, err := h.lookupService.Categories(ctx, vehicleID)
	if err != nil {
		logger.ErrorContext(ctx, "categories lookup failed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "categories lookup unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": groups})
}
