package middleware

import (
	"github.com/gin-gonic/gin"
	csrf "github.com/utrack/gin-csrf"
)

const csrfEnabledKey = "csrf_enabled"

// CSRF checks the _csrf form field on unsafe methods. The session
// middleware must run first.
func CSRF(secret string, onError gin.HandlerFunc) gin.HandlerFunc {
	protect := csrf.Middleware(csrf.Options{
		Secret:    secret,
		ErrorFunc: onError,
	})
	return func(c *gin.Context) {
		c.Set(csrfEnabledKey, true)
		protect(c)
	}
}

// CSRFToken returns the token for the current request, or "" when CSRF
// protection is not installed.
func CSRFToken(c *gin.Context) string {
	if !c.GetBool(csrfEnabledKey) {
		return ""
	}
	return csrf.GetToken(c)
}
