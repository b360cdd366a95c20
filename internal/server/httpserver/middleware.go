package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/hrscreen/internal/common"
	"github.com/dmitrijs2005/hrscreen/internal/logging"
	"github.com/dmitrijs2005/hrscreen/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// AuthMiddleware requires "Authorization: Bearer <access token>" and stores
// the verified claims in the gin context.
func AuthMiddleware(svc AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, common.BearerPrefix)
		if !ok || tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := svc.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			respondServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the claims stored by AuthMiddleware.
func GetClaims(c *gin.Context) (*auth.AccessClaims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.AccessClaims)
	return claims, ok
}

// RequestLogger logs one line per request.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Recovery turns panics into 500 responses and logs them.
func Recovery(log logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error(c.Request.Context(), "panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		RespondWithError(c, http.StatusInternalServerError, "internal error")
		c.Abort()
	})
}
