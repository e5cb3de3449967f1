package middleware

import (
	"net/http"

	"github.com/fluentpath/ielts-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequirePermission gates a route on one permission code carried in the
// grader's JWT claims.
func RequirePermission(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		if !hasPermission(claims.Permissions, code) {
			response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
			return
		}

		c.Next()
	}
}

// RequireAnyPermission gates a route on holding at least one of the codes.
func RequireAnyPermission(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, code := range codes {
			if hasPermission(claims.Permissions, code) {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}

func hasPermission(granted []string, code string) bool {
	for _, p := range granted {
		if p == code {
			return true
		}
	}
	return false
}
