package router

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/handlers"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	csrfTokenSessionKey = "csrf_token"
	csrfTokenFormKey    = "_csrf"
	csrfTokenHeaderKey  = "X-CSRF-Token"
)

// sessionToken returns the random token stored under key, minting and saving
// one on first use.
func sessionToken(session sessions.Session, key string) (string, error) {
	if token, ok := session.Get(key).(string); ok && token != "" {
		return token, nil
	}
	token, err := utils.GenerateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", key, err)
	}
	session.Set(key, token)
	if err := session.Save(); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return token, nil
}

func unsafeMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// CSRFProtection keeps one token per cookie session and checks it on every
// unsafe method, from the _csrf form field or the X-CSRF-Token header.
func CSRFProtection() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := sessionToken(sessions.Default(c), csrfTokenSessionKey)
		if err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
		c.Set(handlers.CSRFTokenKey, token)

		if unsafeMethod(c.Request.Method) {
			submitted := c.PostForm(csrfTokenFormKey)
			if submitted == "" {
				submitted = c.GetHeader(csrfTokenHeaderKey)
			}
			if subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
				if c.GetHeader("HX-Request") == "true" {
					c.Header("HX-Redirect", "/")
				}
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}

		c.Next()
	}
}
