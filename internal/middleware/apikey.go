package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/practice-admin/internal/handler"
)

const HeaderAPIKey = "apikey"

// APIKey rejects requests that do not present the public API key.
func APIKey(key string) gin.HandlerFunc {
	want := []byte(key)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(HeaderAPIKey))
		if len(got) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid api key"))
			return
		}
		c.Next()
	}
}
