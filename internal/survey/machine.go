package survey

import (
	"errors"
	"fmt"
)

// State is the screen a survey session is currently showing.
type State int

const (
	Intro State = iota
	FormActive
	Success
	AdminReview
)

func (s State) String() string {
	switch s {
	case Intro:
		return "intro"
	case FormActive:
		return "form"
	case Success:
		return "success"
	case AdminReview:
		return "admin"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Event is a navigation action issued by the respondent.
type Event int

const (
	EventStart Event = iota
	EventSubmit
	EventReset
	EventToggleAdmin
	EventBack
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventSubmit:
		return "submit"
	case EventReset:
		return "reset"
	case EventToggleAdmin:
		return "toggleAdmin"
	case EventBack:
		return "back"
	}
	return fmt.Sprintf("Event(%d)", int(e))
}

// ErrInvalidTransition is returned when an event is not accepted in the current state.
var ErrInvalidTransition = errors.New("invalid transition")

// Next returns the state reached by applying e in s. Submit is only accepted
// here structurally; whether the form is valid is decided by the caller.
func Next(s State, e Event) (State, error) {
	switch s {
	case Intro:
		switch e {
		case EventStart:
			return FormActive, nil
		case EventToggleAdmin:
			return AdminReview, nil
		}
	case FormActive:
		if e == EventSubmit {
			return Success, nil
		}
	case Success:
		if e == EventReset {
			return Intro, nil
		}
	case AdminReview:
		switch e {
		case EventToggleAdmin, EventBack:
			return Intro, nil
		}
	}
	return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, e, s)
}
