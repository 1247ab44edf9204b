package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/handlers"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/survey"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

const sessionCookieName = "stopaddiction"

// Options configures Setup.
type Options struct {
	SessionSecret string
	SecureCookies bool
	AssetsDir     string
	// SessionMaxAge bounds the cookie; the survey session behind it may be swept sooner.
	SessionMaxAge time.Duration
	// WriteLimit is how many submits and clears one client may make per minute.
	WriteLimit uint
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(http.StatusTooManyRequests, "Too many requests. Try again in %s.", time.Until(info.ResetTime).Round(time.Second))
}

func Setup(log *zap.Logger, opts Options, registry *survey.Registry, catalogue *models.Catalogue) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	if opts.SessionMaxAge <= 0 {
		opts.SessionMaxAge = 24 * time.Hour
	}
	if opts.WriteLimit == 0 {
		opts.WriteLimit = 10
	}

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(opts.SessionMaxAge.Seconds()),
	})
	router.Use(sessions.Sessions(sessionCookieName, store))

	router.Use(NonceMiddleware())
	router.Use(CSRFProtection())
	router.Use(SurveySessionMiddleware(log, registry))

	router.Use(func(c *gin.Context) {
		if c.GetHeader("HX-Request") != "true" {
			nonce, _ := c.Get(handlers.CSPNonceKey)
			csp := fmt.Sprintf(
				"script-src 'self' https://unpkg.com https://cdn.jsdelivr.net 'nonce-%s'; style-src 'self' https://fonts.googleapis.com 'unsafe-inline'; font-src 'self' https://fonts.gstatic.com",
				nonce,
			)
			c.Header("Content-Security-Policy", csp)
		}
		c.Next()
	})

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "same-origin",
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
	})

	if opts.AssetsDir != "" {
		router.Static("/assets", opts.AssetsDir)
	}

	screens := handlers.NewScreens(log, catalogue)
	surveyHandler := handlers.NewSurveyHandler(log, screens, catalogue)
	reviewHandler := handlers.NewReviewHandler(log, screens)

	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: opts.WriteLimit,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/", surveyHandler.Show)
	router.POST("/start", surveyHandler.Start)
	router.GET("/insight", surveyHandler.Insight)
	router.POST("/reset", surveyHandler.Reset)

	form := router.Group("/form")
	{
		form.POST("/field", surveyHandler.SetField)
		form.POST("/reason", surveyHandler.ToggleReason)
	}
	router.POST("/submit", limiter, surveyHandler.Submit)

	admin := router.Group("/admin")
	{
		admin.POST("/toggle", reviewHandler.Toggle)
		admin.POST("/back", reviewHandler.Back)
		admin.GET("/clear", reviewHandler.ConfirmClear)
		admin.POST("/clear", limiter, reviewHandler.Clear)
	}

	return router
}
