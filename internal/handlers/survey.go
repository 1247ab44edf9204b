package handlers

import (
	"net/http"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/survey"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fullFormMarker is posted by the questionnaire's own submit button. When
// present every answer is taken from the posted form.
const fullFormMarker = "_form"

type SurveyHandler struct {
	log       *zap.Logger
	screens   *Screens
	catalogue *models.Catalogue
}

func NewSurveyHandler(log *zap.Logger, screens *Screens, catalogue *models.Catalogue) *SurveyHandler {
	return &SurveyHandler{log: log, screens: screens, catalogue: catalogue}
}

// Show renders the current screen.
func (h *SurveyHandler) Show(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	h.screens.Render(c, s, http.StatusOK)
}

func (h *SurveyHandler) Start(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	if err := s.Start(); err != nil {
		h.screens.Fail(c, s, err)
		return
	}
	h.screens.Done(c, s)
}

// SetField records one answer and replies with the progress bar.
func (h *SurveyHandler) SetField(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	name := models.Field(c.PostForm("name"))
	value, ok := c.GetPostForm("value")
	if !ok {
		value = c.PostForm(string(name))
	}
	if err := s.SetField(name, value); err != nil {
		h.screens.Fail(c, s, err)
		return
	}
	write(c, http.StatusOK, views.Progress(views.Percent(s.Snapshot().Progress), false))
}

// ToggleReason flips one reason and replies with the reasons block plus an
// out-of-band progress bar. Plain posts are redirected back to the form.
func (h *SurveyHandler) ToggleReason(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	if err := s.ToggleReason(c.PostForm("tag")); err != nil {
		h.screens.Fail(c, s, err)
		return
	}
	if !isHTMX(c) {
		h.screens.Done(c, s)
		return
	}
	v := s.Snapshot()
	q, _ := views.NewQuestionView(h.catalogue, models.FieldReasons, v.Response)
	write(c, http.StatusOK, views.Reasons(q))
	if err := views.Progress(views.Percent(v.Progress), true).Render(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// Submit applies any posted answers, then validates, persists and moves to
// the thank-you screen.
func (h *SurveyHandler) Submit(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	if c.PostForm(fullFormMarker) != "" && s.State() == survey.FormActive {
		if err := h.applyPostedForm(c, s); err != nil {
			h.screens.Fail(c, s, err)
			return
		}
	}

	rec, err := s.Submit(c.Request.Context())
	if err != nil {
		h.screens.Fail(c, s, err)
		return
	}
	h.log.Info("Survey response submitted",
		zap.String("session", s.ID()),
		zap.String("record", rec.ID),
	)
	h.screens.Done(c, s)
}

func (h *SurveyHandler) applyPostedForm(c *gin.Context, s *survey.Session) error {
	for _, field := range models.TrackedFields {
		if field == models.FieldReasons {
			continue
		}
		if value, ok := c.GetPostForm(string(field)); ok {
			if err := s.SetField(field, value); err != nil {
				return err
			}
		}
	}

	posted := c.PostFormArray(string(models.FieldReasons))
	want := make(map[string]bool, len(posted))
	for _, tag := range posted {
		want[tag] = true
	}
	current := s.Snapshot().Response
	for _, tag := range current.Reasons {
		if !want[tag] {
			if err := s.ToggleReason(tag); err != nil {
				return err
			}
		}
	}
	for _, tag := range posted {
		if current.HasReason(tag) {
			continue
		}
		if err := s.ToggleReason(tag); err != nil {
			return err
		}
		current.Reasons = append(current.Reasons, tag)
	}
	return nil
}

// Insight serves the insight block for polling. Once the session has left
// the thank-you screen there is nothing to swap in.
func (h *SurveyHandler) Insight(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	v := s.Snapshot()
	if v.State != survey.Success {
		c.Status(http.StatusNoContent)
		return
	}
	write(c, http.StatusOK, views.Insight(views.InsightView{Ready: v.InsightReady, Text: v.Insight}))
}

func (h *SurveyHandler) Reset(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	if err := s.Reset(); err != nil {
		h.screens.Fail(c, s, err)
		return
	}
	h.screens.Done(c, s)
}
