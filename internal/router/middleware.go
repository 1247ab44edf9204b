package router

import (
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/handlers"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/survey"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const surveyIDSessionKey = "survey_id"

// SurveySessionMiddleware binds the cookie's survey session to the request.
// A visitor without one, or whose session was swept, gets a fresh session at
// the intro screen.
func SurveySessionMiddleware(log *zap.Logger, registry *survey.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, _ := session.Get(surveyIDSessionKey).(string)

		s := registry.Get(id)
		if s.ID() != id {
			session.Set(surveyIDSessionKey, s.ID())
			if err := session.Save(); err != nil {
				log.Error("Failed to save survey session id", zap.Error(err))
			}
		}

		c.Set(handlers.SurveySessionKey, s)
		c.Next()
	}
}
