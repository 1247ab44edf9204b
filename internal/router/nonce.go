package router

import (
	"net/http"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/handlers"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const cspNonceSessionKey = "csp_nonce"

// NonceMiddleware exposes a per-session nonce to the CSP header and to the
// inline chart script on the review screen.
func NonceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		nonce, err := sessionToken(sessions.Default(c), cspNonceSessionKey)
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Set(handlers.CSPNonceKey, nonce)
		c.Next()
	}
}
