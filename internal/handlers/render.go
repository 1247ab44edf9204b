package handlers

import (
	"errors"
	"net/http"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/review"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/survey"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/views"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys shared with the router middleware.
const (
	SurveySessionKey = "survey_session"
	CSRFTokenKey     = "csrf_token"
	CSPNonceKey      = "csp_nonce"
)

const pageTitle = "StopAddiction"

// Screens renders whichever screen a session is on.
type Screens struct {
	log       *zap.Logger
	catalogue *models.Catalogue
}

func NewScreens(log *zap.Logger, catalogue *models.Catalogue) *Screens {
	return &Screens{log: log, catalogue: catalogue}
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func contextString(c *gin.Context, key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// currentSession returns the survey session bound by the router middleware.
func currentSession(c *gin.Context) (*survey.Session, bool) {
	v, ok := c.Get(SurveySessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*survey.Session)
	return s, ok
}

// write sends a partial to HTMX requests and a full page otherwise.
func write(c *gin.Context, status int, component templ.Component) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")

	var err error
	if isHTMX(c) {
		err = component.Render(c.Request.Context(), c.Writer)
	} else {
		err = views.Layout(pageTitle, contextString(c, CSRFTokenKey), contextString(c, CSPNonceKey)).Render(
			templ.WithChildren(c.Request.Context(), component),
			c.Writer,
		)
	}
	if err != nil {
		_ = c.Error(err)
	}
}

// Component builds the current screen of s.
func (sc *Screens) Component(c *gin.Context, s *survey.Session) (templ.Component, error) {
	csrf := contextString(c, CSRFTokenKey)
	v := s.Snapshot()

	switch v.State {
	case survey.FormActive:
		return views.Form(views.NewFormView(sc.catalogue, v.Response, v.Progress, v.Missing, csrf)), nil
	case survey.Success:
		return views.Success(views.SuccessView{
			CSRF:    csrf,
			Class:   v.Response.ClassLevel,
			Insight: views.InsightView{Ready: v.InsightReady, Text: v.Insight},
		}), nil
	case survey.AdminReview:
		report, err := review.Build(v.Records, sc.catalogue.Options(models.FieldClass))
		if err != nil {
			return nil, err
		}
		return views.Admin(views.AdminView{CSRF: csrf, Nonce: contextString(c, CSPNonceKey), Report: report}), nil
	default:
		return views.Intro(csrf), nil
	}
}

// Render writes the current screen with the given status.
func (sc *Screens) Render(c *gin.Context, s *survey.Session, status int) {
	component, err := sc.Component(c, s)
	if err != nil {
		sc.log.Error("Failed to build screen", zap.String("session", s.ID()), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to render page")
		return
	}
	write(c, status, component)
}

// Done finishes a successful transition: HTMX gets the new screen, plain
// form posts are redirected so a reload does not resubmit.
func (sc *Screens) Done(c *gin.Context, s *survey.Session) {
	if isHTMX(c) {
		sc.Render(c, s, http.StatusOK)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Fail maps a session error to a response, re-rendering the current screen.
func (sc *Screens) Fail(c *gin.Context, s *survey.Session, err error) {
	switch {
	case errors.Is(err, survey.ErrValidationFailed):
		sc.Render(c, s, http.StatusUnprocessableEntity)
	case errors.Is(err, survey.ErrInvalidTransition):
		sc.log.Warn("Rejected survey action",
			zap.String("session", s.ID()),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		sc.Render(c, s, http.StatusConflict)
	default:
		sc.log.Error("Survey action failed",
			zap.String("session", s.ID()),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		sc.Render(c, s, http.StatusInternalServerError)
	}
}

// mustSession returns the bound session, aborting the request without one.
func mustSession(c *gin.Context) (*survey.Session, bool) {
	s, ok := currentSession(c)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
	}
	return s, ok
}
