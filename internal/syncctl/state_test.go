package syncctl

import (
	"context"
	"errors"
	"testing"
	"time"

	"activities-cli/internal/dispatch"
	"activities-cli/internal/model"
	"activities-cli/internal/render"
)

var t0 = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func snapOf(names ...string) model.Snapshot {
	var acts []model.Activity
	for _, n := range names {
		acts = append(acts, model.Activity{Name: n, MaxParticipants: 10})
	}
	return model.NewSnapshot(acts...)
}

func TestFetchLifecycle_IdleLoadingLoaded(t *testing.T) {
	s := New()
	if s.Phase != Idle {
		t.Fatalf("expected idle, got %v", s.Phase)
	}
	s, tk := s.BeginFetch()
	if s.Phase != Loading {
		t.Fatalf("expected loading, got %v", s.Phase)
	}
	s, applied := s.ApplyFetch(tk, snapOf("Chess Club", "Gym Class"), nil, t0)
	if !applied || s.Phase != Loaded {
		t.Fatalf("expected loaded, got %v applied=%v", s.Phase, applied)
	}
	if len(s.View.Cards) != 2 || len(s.View.Options) != 2 || !s.SyncedAt.Equal(t0) {
		t.Fatalf("unexpected view %+v", s.View)
	}
}

func TestApplyFetch_RepeatedLoadsReplaceOptions(t *testing.T) {
	s := New()
	for i := 0; i < 3; i++ {
		var tk Ticket
		s, tk = s.BeginFetch()
		s, _ = s.ApplyFetch(tk, snapOf("A", "B", "C"), nil, t0)
	}
	if got := len(s.View.Options); got != 3 {
		t.Fatalf("expected 3 options after repeated loads, got %d", got)
	}
}

func TestApplyFetch_StaleTicketIgnored(t *testing.T) {
	s := New()
	s, first := s.BeginFetch()
	s, second := s.BeginFetch()

	s, applied := s.ApplyFetch(second, snapOf("New"), nil, t0)
	if !applied {
		t.Fatalf("expected latest ticket to apply")
	}
	// The slower, older response resolves last and must not win.
	s, applied = s.ApplyFetch(first, snapOf("Old"), nil, t0.Add(time.Second))
	if applied {
		t.Fatalf("expected older ticket to be ignored")
	}
	if s.View.Cards[0].Name != "New" {
		t.Fatalf("expected newest snapshot to remain, got %q", s.View.Cards[0].Name)
	}
}

func TestApplyFetch_InitialFailureShowsNoticeOnly(t *testing.T) {
	s, tk := New().BeginFetch()
	s, _ = s.ApplyFetch(tk, model.Snapshot{}, errors.New("boom"), t0)
	if s.Phase != Failed {
		t.Fatalf("expected failed, got %v", s.Phase)
	}
	if s.View.Notice != render.FailureNotice || len(s.View.Options) != 0 || len(s.View.Cards) != 0 {
		t.Fatalf("unexpected failed view %+v", s.View)
	}
	if s.HasSnapshot() {
		t.Fatalf("expected no snapshot")
	}
}

func TestApplyFetch_ResyncFailureKeepsLastKnownGood(t *testing.T) {
	s, tk := New().BeginFetch()
	s, _ = s.ApplyFetch(tk, snapOf("Chess Club"), nil, t0)

	s, tk = s.BeginFetch()
	s, _ = s.ApplyFetch(tk, model.Snapshot{}, errors.New("boom"), t0.Add(time.Minute))
	if s.Phase != Failed || !s.Stale() {
		t.Fatalf("expected failed+stale, got %v stale=%v", s.Phase, s.Stale())
	}
	if len(s.View.Options) != 1 || s.View.Options[0].Value != "Chess Club" {
		t.Fatalf("expected last-known-good options, got %+v", s.View.Options)
	}
	if s.View.Notice != render.FailureNotice {
		t.Fatalf("expected visible failure notice, got %q", s.View.Notice)
	}
	if !s.SyncedAt.Equal(t0) {
		t.Fatalf("expected synced-at of the last good load")
	}

	s, tk = s.BeginFetch()
	s, _ = s.ApplyFetch(tk, snapOf("Chess Club"), nil, t0.Add(2*time.Minute))
	if s.Stale() || s.View.Notice != "" {
		t.Fatalf("expected fresh view after recovery, got %+v", s.View)
	}
}

func TestFeedback_OlderTimerDoesNotHideNewerMessage(t *testing.T) {
	s := New()
	s, first := s.ShowFeedback(model.Feedback{Text: "one", Kind: model.FeedbackSuccess, TTL: 5 * time.Second}, t0)
	s, second := s.ShowFeedback(model.Feedback{Text: "two", Kind: model.FeedbackError, TTL: 4 * time.Second}, t0.Add(time.Second))

	s = s.HideFeedback(first)
	if !s.FeedbackVisible || s.Feedback.Text != "two" {
		t.Fatalf("expected newer message to stay visible, got %+v visible=%v", s.Feedback, s.FeedbackVisible)
	}
	s = s.HideFeedback(second)
	if s.FeedbackVisible {
		t.Fatalf("expected latest timer to hide the message")
	}
	if !s.HideAt.Equal(t0.Add(5 * time.Second)) {
		t.Fatalf("unexpected hide-at %v", s.HideAt)
	}
}

func TestBeginSubmit_RejectsDoubleSubmission(t *testing.T) {
	s, ok := New().BeginSubmit()
	if !ok {
		t.Fatalf("expected first submit to start")
	}
	if _, ok := s.BeginSubmit(); ok {
		t.Fatalf("expected second submit to be rejected while in flight")
	}
	out := dispatch.Outcome{Op: dispatch.OpRegister, Feedback: model.Feedback{Text: "ok", Kind: model.FeedbackSuccess}, Resync: true}
	s, _, resync := s.ApplyOutcome(out, t0)
	if !resync || s.Submitting {
		t.Fatalf("expected resync and submission released, got resync=%v submitting=%v", resync, s.Submitting)
	}
}

type countingFetcher struct {
	n    int
	snap model.Snapshot
	err  error
}

func (f *countingFetcher) ListActivities(ctx context.Context) (model.Snapshot, error) {
	f.n++
	return f.snap, f.err
}

func TestSync_RunsOneCycle(t *testing.T) {
	f := &countingFetcher{snap: snapOf("A")}
	s := Sync(context.Background(), New(), f, func() time.Time { return t0 })
	if f.n != 1 || s.Phase != Loaded || len(s.View.Cards) != 1 {
		t.Fatalf("unexpected state after sync: calls=%d phase=%v", f.n, s.Phase)
	}
}
