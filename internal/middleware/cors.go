package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// CORS allows the listed origins, or any origin when the list is empty.
// Preflight requests stop here.
func CORS(origenes []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origen := c.GetHeader("Origin")
		switch {
		case len(origenes) == 0:
			c.Header("Access-Control-Allow-Origin", "*")
		case origen != "" && slices.Contains(origenes, origen):
			c.Header("Access-Control-Allow-Origin", origen)
			c.Header("Vary", "Origin")
		default:
			c.Header("Vary", "Origin")
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, Retry-After, X-RateLimit-Remaining")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
