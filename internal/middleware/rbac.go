package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/amar-rokto/api/internal/models"
	appErrors "github.com/amar-rokto/api/pkg/errors"
	"github.com/amar-rokto/api/pkg/response"
)

func currentClaims(c *gin.Context) *models.JWTClaims {
	if v, ok := c.Get(ContextUserKey); ok {
		if claims, ok := v.(*models.JWTClaims); ok {
			return claims
		}
	}
	return nil
}

func forbid(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}

// RequireRoles admits only callers holding one of the given roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			forbid(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			forbid(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireBankOperator admits admins and the operator who owns the bank
// in the bankId path parameter. A bank row shares its id with its
// operator's user id, so ownership is a plain id comparison.
func RequireBankOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			forbid(c, appErrors.ErrUnauthorized)
			return
		}
		if claims.Role == models.RoleAdmin {
			c.Next()
			return
		}
		if claims.Role == models.RoleBloodBank && claims.UserID == c.Param("bankId") {
			c.Next()
			return
		}
		forbid(c, appErrors.ErrForbidden)
	}
}
