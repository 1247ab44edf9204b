package insight

import (
	"context"
	"time"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"

	"go.uber.org/zap"
)

// DefaultFallback is shown whenever the provider fails or returns nothing.
const DefaultFallback = "Сауалнамаға қатысқаныңыз үшін рақмет. Салауатты өмір салтын ұстану — сіздің ең дұрыс таңдауыңыз."

// Advisor wraps a Provider so that every request resolves to displayable text.
type Advisor struct {
	log      *zap.Logger
	provider Provider
	fallback string
	timeout  time.Duration
}

// NewAdvisor creates an Advisor. A zero timeout waits for the provider indefinitely.
func NewAdvisor(log *zap.Logger, provider Provider, fallback string, timeout time.Duration) *Advisor {
	if fallback == "" {
		fallback = DefaultFallback
	}
	return &Advisor{
		log:      log,
		provider: provider,
		fallback: fallback,
		timeout:  timeout,
	}
}

// Fallback returns the text used when no insight is available.
func (a *Advisor) Fallback() string {
	return a.fallback
}

// Resolve calls the provider and substitutes the fallback on any failure.
// It is not retried.
func (a *Advisor) Resolve(ctx context.Context, response models.SurveyResponse) string {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := a.provider.Insight(ctx, response)
	if err != nil {
		a.log.Warn("Insight request failed, using fallback",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
		return a.fallback
	}
	if text == "" {
		a.log.Warn("Insight provider returned empty text, using fallback")
		return a.fallback
	}
	a.log.Debug("Insight generated", zap.Duration("elapsed", time.Since(start)), zap.Int("length", len(text)))
	return text
}

// Request starts Resolve in the background and returns a handle to its outcome.
// The response is copied so later edits by the caller cannot reach the provider.
func (a *Advisor) Request(ctx context.Context, response models.SurveyResponse) *Task {
	t := &Task{done: make(chan struct{})}
	r := response.Clone()
	go func() {
		defer close(t.done)
		t.text = a.Resolve(ctx, r)
	}()
	return t
}

// Task is one outstanding insight request.
type Task struct {
	done chan struct{}
	text string
}

// Done is closed once the text is available.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Text returns the resolved text, or "" while the task is still running.
func (t *Task) Text() string {
	select {
	case <-t.done:
		return t.text
	default:
		return ""
	}
}

// Wait blocks until the task resolves or ctx ends.
func (t *Task) Wait(ctx context.Context) (string, error) {
	select {
	case <-t.done:
		return t.text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
