package booking

import (
	"context"
	"errors"
	"fmt"
)

// State is a step of the booking submission.
type State string

const (
	CollectingDetails      State = "collecting-details"
	CollectingConfirmation State = "collecting-confirmation"
	Submitting             State = "submitting"
	Submitted              State = "submitted"
	Failed                 State = "failed"
)

var ErrInvalidTransition = errors.New("invalid booking state transition")

// SubmitFunc performs the single write of a validated draft.
type SubmitFunc func(ctx context.Context, d Draft) error

// Flow drives one booking attempt:
//
//	collecting-details -> collecting-confirmation -> submitting -> submitted | failed
//
// Failed validation keeps the flow in collecting-details.  Going back from
// confirmation keeps the entered values.  A successful submit clears the
// draft.  A Flow is not safe for concurrent use.
type Flow struct {
	state State
	draft Draft
	err   error
}

// NewFlow returns a flow in collecting-details with an empty draft.
func NewFlow() *Flow { return &Flow{state: CollectingDetails} }

func (f *Flow) State() State { return f.state }
func (f *Flow) Draft() Draft { return f.draft }

// Err is the failure that moved the flow to Failed, if any.
func (f *Flow) Err() error { return f.err }

// Update replaces the draft while details are being collected.
func (f *Flow) Update(d Draft) error {
	if f.state != CollectingDetails {
		return f.transitionErr("update")
	}
	f.draft = d.Normalize()
	return nil
}

// Continue validates the draft and moves to confirmation.  On a
// validation error the state does not change.
func (f *Flow) Continue() error {
	if f.state != CollectingDetails {
		return f.transitionErr("continue")
	}
	if err := ValidateDraft(f.draft); err != nil {
		return err
	}
	f.state = CollectingConfirmation
	return nil
}

// Back returns from confirmation (or a failed attempt) to details with
// the entered values intact.
func (f *Flow) Back() error {
	if f.state != CollectingConfirmation && f.state != Failed {
		return f.transitionErr("back")
	}
	f.state = CollectingDetails
	f.err = nil
	return nil
}

// Retry moves a failed attempt back to confirmation.
func (f *Flow) Retry() error {
	if f.state != Failed {
		return f.transitionErr("retry")
	}
	f.state = CollectingConfirmation
	f.err = nil
	return nil
}

// Submit hands the confirmed draft to submit exactly once.
func (f *Flow) Submit(ctx context.Context, submit SubmitFunc) error {
	if f.state != CollectingConfirmation {
		return f.transitionErr("submit")
	}
	f.state = Submitting
	if err := submit(ctx, f.draft); err != nil {
		f.state = Failed
		f.err = err
		return err
	}
	f.state = Submitted
	f.draft = Draft{}
	return nil
}

func (f *Flow) transitionErr(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, f.state)
}
