package handlers

import (
	"errors"
	"net/http"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/survey"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/views"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReviewHandler struct {
	log     *zap.Logger
	screens *Screens
}

func NewReviewHandler(log *zap.Logger, screens *Screens) *ReviewHandler {
	return &ReviewHandler{log: log, screens: screens}
}

// Toggle switches between the intro and the review.
func (h *ReviewHandler) Toggle(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	if err := s.ToggleAdmin(c.Request.Context()); err != nil {
		h.screens.Fail(c, s, err)
		return
	}
	h.screens.Done(c, s)
}

func (h *ReviewHandler) Back(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	if err := s.Back(); err != nil {
		h.screens.Fail(c, s, err)
		return
	}
	h.screens.Done(c, s)
}

// ConfirmClear shows the confirmation step before a clear.
func (h *ReviewHandler) ConfirmClear(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	if s.State() != survey.AdminReview {
		h.screens.Render(c, s, http.StatusConflict)
		return
	}
	write(c, http.StatusOK, views.ClearConfirm(contextString(c, CSRFTokenKey)))
}

// Clear deletes every stored response when the request carries confirm=yes.
func (h *ReviewHandler) Clear(c *gin.Context) {
	s, ok := mustSession(c)
	if !ok {
		return
	}
	err := s.ClearResponses(c.Request.Context(), c.PostForm("confirm") == "yes")
	switch {
	case err == nil:
		h.screens.Done(c, s)
	case errors.Is(err, survey.ErrNotConfirmed):
		write(c, http.StatusBadRequest, views.ClearConfirm(contextString(c, CSRFTokenKey)))
	default:
		h.screens.Fail(c, s, err)
	}
}
