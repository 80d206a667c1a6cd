// Package syncctl keeps a rendered activities view consistent with the server
// across asynchronous fetches and mutations.
//
// State is a value: every transition takes the current State and returns the
// next one. Asynchronous work is tagged with a Ticket when it starts; results
// carrying anything but the latest ticket of their stream are dropped.
package syncctl

import (
	"context"
	"time"

	"activities-cli/internal/dispatch"
	"activities-cli/internal/model"
	"activities-cli/internal/render"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Ticket identifies one issued request within a stream (fetches or feedback).
type Ticket uint64

type State struct {
	Phase Phase
	// View is what is currently displayed.
	View render.View
	// LastGood is the most recent successfully fetched snapshot.
	LastGood model.Snapshot
	SyncedAt time.Time
	LastErr  error

	Feedback        model.Feedback
	FeedbackVisible bool
	HideAt          time.Time

	// Submitting is set while a form submission is in flight.
	Submitting bool

	fetchSeq    Ticket
	feedbackSeq Ticket
	hasGood     bool
}

func New() State { return State{Phase: Idle} }

// BeginFetch enters Loading and issues the ticket the fetch result must carry.
// The displayed view is left as it is until the result arrives.
func (s State) BeginFetch() (State, Ticket) {
	s.fetchSeq++
	s.Phase = Loading
	return s, s.fetchSeq
}

// ApplyFetch applies a fetch result. Results for anything but the latest
// ticket are ignored (applied=false).
//
// A failure before any successful load shows the failure notice with no
// options. A failure after one keeps the last-known-good cards and options,
// marked stale, with the notice alongside.
func (s State) ApplyFetch(t Ticket, snap model.Snapshot, err error, now time.Time) (next State, applied bool) {
	if t != s.fetchSeq {
		return s, false
	}
	if err != nil {
		s.Phase = Failed
		s.LastErr = err
		if s.hasGood {
			v := render.Render(s.LastGood)
			v.Notice = render.FailureNotice
			v.Stale = true
			s.View = v
		} else {
			s.View = render.Failed()
		}
		return s, true
	}
	s.Phase = Loaded
	s.LastErr = nil
	s.LastGood = snap
	s.hasGood = true
	s.SyncedAt = now
	s.View = render.Render(snap)
	return s, true
}

func (s State) FetchTicket() Ticket { return s.fetchSeq }

func (s State) HasSnapshot() bool { return s.hasGood }

func (s State) Stale() bool { return s.View.Stale }

// ShowFeedback makes fb visible and issues the ticket its hide timer must carry.
func (s State) ShowFeedback(fb model.Feedback, now time.Time) (State, Ticket) {
	s.feedbackSeq++
	s.Feedback = fb
	s.FeedbackVisible = true
	s.HideAt = now.Add(fb.TTL)
	return s, s.feedbackSeq
}

// HideFeedback hides the message only if t belongs to the latest message, so
// a timer started for an overwritten message cannot hide its successor.
func (s State) HideFeedback(t Ticket) State {
	if t != s.feedbackSeq {
		return s
	}
	s.FeedbackVisible = false
	return s
}

func (s State) FeedbackTicket() Ticket { return s.feedbackSeq }

// BeginSubmit reports false while another submission is still in flight.
func (s State) BeginSubmit() (State, bool) {
	if s.Submitting {
		return s, false
	}
	s.Submitting = true
	return s, true
}

// ApplyOutcome surfaces a mutation outcome and reports whether a re-sync is due.
func (s State) ApplyOutcome(out dispatch.Outcome, now time.Time) (State, Ticket, bool) {
	if out.Op == dispatch.OpRegister {
		s.Submitting = false
	}
	s, t := s.ShowFeedback(out.Feedback, now)
	return s, t, out.Resync
}

// Fetcher is the read side of the Remote Activity Service.
type Fetcher interface {
	ListActivities(ctx context.Context) (model.Snapshot, error)
}

// Sync runs one Loading cycle synchronously: begin, fetch, apply.
func Sync(ctx context.Context, s State, f Fetcher, now func() time.Time) State {
	s, t := s.BeginFetch()
	snap, err := f.ListActivities(ctx)
	s, _ = s.ApplyFetch(t, snap, err, now())
	return s
}
