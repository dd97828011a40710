package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/amar-rokto/api/internal/middleware"
	"github.com/amar-rokto/api/internal/models"
)

// claimsFromContext returns the authenticated caller's claims, or nil
// on anonymous requests.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	if claims, ok := c.Get(middleware.ContextUserKey); ok {
		if typed, ok := claims.(*models.JWTClaims); ok {
			return typed
		}
	}
	return nil
}
