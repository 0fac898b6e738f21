package http

import (
	"fmt"
	"net/http"
	"time"

	"log/slog"

	appauthorizer "github.com/cukaracha/hrspwr-sub000/internal/app/authorizer"
	"github.com/cukaracha/hrspwr-sub000/internal/domain/authorizer"
	"github.com/cukaracha/hrspwr-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request.Context(), "request failed",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Duration("duration", duration),
			)
		} else {
			logger.InfoContext(c.Request.Context(), "request completed",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Duration("duration", duration),
			)
		}
	}
}

// The local deployment has no gateway in front of it, so protected routes run
// the authorizer themselves with a synthesized method ARN.
const (
	localAPIID = "local"
	localStage = "live"
)

func requireAuthorization(authorizerService appauthorizer.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := authorizer.AuthorizerRequest{
			AuthorizationToken: c.GetHeader("Authorization"),
			MethodArn: fmt.Sprintf("arn:aws:execute-api:local:000000000000:%s/%s/%s%s",
				localAPIID, localStage, c.Request.Method, c.Request.URL.Path),
		}

		resp := authorizerService.Authorize(c.Request.Context(), req)

		allowed := len(resp.PolicyDocument.Statement) > 0 &&
			resp.PolicyDocument.Statement[0].Effect == authorizer.EffectAllow
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		if userID, ok := resp.Context["userId"]; ok {
			c.Set("userId", userID)
		}

		c.Next()
	}
}
