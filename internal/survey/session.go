package survey

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/insight"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotConfirmed is returned when a clear is requested without confirmation.
var ErrNotConfirmed = errors.New("clear not confirmed")

// ResponseStore is the persistence the survey needs.
type ResponseStore interface {
	Append(ctx context.Context, rec models.StoredRecord) error
	ListAll(ctx context.Context) []models.StoredRecord
	Clear(ctx context.Context) error
}

// InsightRequester starts a background insight request.
type InsightRequester interface {
	Request(ctx context.Context, response models.SurveyResponse) *insight.Task
}

// Service holds the collaborators shared by every session.
type Service struct {
	log     *zap.Logger
	store   ResponseStore
	insight InsightRequester

	// ctx bounds background insight requests; it ends at shutdown.
	ctx context.Context

	Now      func() time.Time
	NewID    func() string
	Layout   string
	Location *time.Location
}

// NewService creates a Service. Background work is tied to ctx.
func NewService(ctx context.Context, log *zap.Logger, store ResponseStore, requester InsightRequester) *Service {
	return &Service{
		log:      log,
		store:    store,
		insight:  requester,
		ctx:      ctx,
		Now:      time.Now,
		NewID:    uuid.NewString,
		Layout:   "02.01.2006, 15:04:05",
		Location: time.UTC,
	}
}

// NewSession creates a session in the Intro state.
func (svc *Service) NewSession(id string) *Session {
	return &Session{
		id:       id,
		svc:      svc,
		state:    Intro,
		lastSeen: svc.Now(),
	}
}

// Session is one respondent's walk through the screens. All methods are
// safe for concurrent use; transitions are applied one at a time.
type Session struct {
	id  string
	svc *Service

	mu       sync.Mutex
	state    State
	form     *Form
	missing  []models.Field
	finished *models.SurveyResponse
	records  []models.StoredRecord
	lastSeen time.Time

	// generation increases on every arrival at Success. An insight result is
	// applied only if its generation is still current.
	generation   uint64
	insightText  string
	insightReady bool
}

// View is a consistent snapshot of a session for rendering.
type View struct {
	State        State
	Response     models.SurveyResponse
	Progress     float64
	Missing      []models.Field
	InsightReady bool
	Insight      string
	Records      []models.StoredRecord
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current screen.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the data needed to render the current screen.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.svc.Now()

	v := View{State: s.state}
	switch s.state {
	case FormActive:
		v.Response = s.form.Response()
		v.Progress = s.form.Progress()
		v.Missing = append([]models.Field(nil), s.missing...)
	case Success:
		v.Response = s.finished.Clone()
		v.InsightReady = s.insightReady
		v.Insight = s.insightText
	case AdminReview:
		v.Records = append([]models.StoredRecord(nil), s.records...)
	}
	return v
}

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) transition(e Event) error {
	next, err := Next(s.state, e)
	if err != nil {
		return err
	}
	s.svc.log.Debug("Survey transition",
		zap.String("session", s.id),
		zap.Stringer("from", s.state),
		zap.Stringer("to", next),
	)
	s.state = next
	s.lastSeen = s.svc.Now()
	return nil
}

// Start opens a fresh, empty form.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(EventStart); err != nil {
		return err
	}
	s.form = NewForm()
	s.missing = nil
	return nil
}

// SetField records one answer on the open form.
func (s *Session) SetField(name models.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != FormActive {
		return fmt.Errorf("%w: setField in %s", ErrInvalidTransition, s.state)
	}
	s.form.SetField(name, value)
	s.lastSeen = s.svc.Now()
	return nil
}

// ToggleReason flips one reason tag on the open form.
func (s *Session) ToggleReason(tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != FormActive {
		return fmt.Errorf("%w: toggleReason in %s", ErrInvalidTransition, s.state)
	}
	s.form.ToggleReason(tag)
	s.lastSeen = s.svc.Now()
	return nil
}

// Submit validates the open form, persists it and moves to Success. A
// failed write is logged but does not keep the respondent from Success.
// On a *ValidationError nothing changes except the remembered missing fields.
func (s *Session) Submit(ctx context.Context) (models.StoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != FormActive {
		return models.StoredRecord{}, fmt.Errorf("%w: submit in %s", ErrInvalidTransition, s.state)
	}

	finished, err := s.form.Submit()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.missing = verr.Missing
		}
		return models.StoredRecord{}, err
	}

	rec := models.StoredRecord{
		SurveyResponse: finished.Clone(),
		ID:             s.svc.NewID(),
		SubmittedAt:    s.svc.Now().In(s.svc.Location).Format(s.svc.Layout),
	}
	if err := s.svc.store.Append(ctx, rec); err != nil {
		s.svc.log.Error("Failed to persist response, continuing to success",
			zap.String("session", s.id),
			zap.String("record", rec.ID),
			zap.Error(err),
		)
	}

	if err := s.transition(EventSubmit); err != nil {
		return rec, err
	}
	s.form = nil
	s.missing = nil
	s.finished = &finished
	s.generation++
	s.insightReady = false
	s.insightText = ""

	task := s.svc.insight.Request(s.svc.ctx, finished)
	go s.awaitInsight(s.generation, task)

	return rec, nil
}

// awaitInsight applies the task's text unless the session has moved on.
func (s *Session) awaitInsight(generation uint64, task *insight.Task) {
	<-task.Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Success || s.generation != generation {
		s.svc.log.Debug("Discarding stale insight",
			zap.String("session", s.id),
			zap.Uint64("generation", generation),
		)
		return
	}
	s.insightText = task.Text()
	s.insightReady = true
}

// Reset leaves Success and discards the carried response.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(EventReset); err != nil {
		return err
	}
	s.finished = nil
	s.insightReady = false
	s.insightText = ""
	return nil
}

// ToggleAdmin switches between Intro and AdminReview. Entering AdminReview
// reads the store once.
func (s *Session) ToggleAdmin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(EventToggleAdmin); err != nil {
		return err
	}
	if s.state == AdminReview {
		s.records = s.svc.store.ListAll(ctx)
	} else {
		s.records = nil
	}
	return nil
}

// Back returns from AdminReview to Intro.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.transition(EventBack); err != nil {
		return err
	}
	s.records = nil
	return nil
}

// ClearResponses deletes every stored record once confirmed. The review is
// left showing whatever the store holds afterwards.
func (s *Session) ClearResponses(ctx context.Context, confirmed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AdminReview {
		return fmt.Errorf("%w: clear in %s", ErrInvalidTransition, s.state)
	}
	if !confirmed {
		return ErrNotConfirmed
	}

	err := s.svc.store.Clear(ctx)
	if err != nil {
		s.records = s.svc.store.ListAll(ctx)
		return err
	}
	s.records = []models.StoredRecord{}
	s.svc.log.Info("Stored responses cleared", zap.String("session", s.id))
	return nil
}
