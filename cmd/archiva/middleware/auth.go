package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/RhmnKpc/archiva/cmd/archiva/types"
	"github.com/RhmnKpc/archiva/pkg/utils"
)

const claimsKey = "claims"

// AuthMiddleware validates the bearer JWT of a request
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if secret != "" && strings.HasPrefix(authHeader, "Bearer ") {
			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := utils.ValidateJWT(token, secret)
			if err == nil {
				c.Set(claimsKey, claims)
				c.Next()
				return
			}
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("rejected token")
		}

		c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "unauthorized"})
		c.Abort()
	}
}

// AdminOnly rejects authenticated callers without the admin claim
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, exists := GetClaimsFromContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, types.ErrorResponse{Error: "authentication required"})
			c.Abort()
			return
		}
		if !claims.Admin {
			c.JSON(http.StatusForbidden, types.ErrorResponse{Error: "admin privileges required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetClaimsFromContext extracts the validated token claims from gin context
func GetClaimsFromContext(c *gin.Context) (*utils.Claims, bool) {
	claims, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	typed, ok := claims.(*utils.Claims)
	return typed, ok
}
