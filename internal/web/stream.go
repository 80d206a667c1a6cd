package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"activities-cli/internal/model"
	"activities-cli/internal/syncctl"

	"github.com/dustin/go-humanize"
	"github.com/starfederation/datastar-go/datastar"
)

type fetchResult struct {
	ticket syncctl.Ticket
	snap   model.Snapshot
	err    error
}

type statusVM struct {
	Phase    string
	Loading  bool
	Stale    bool
	Notice   string
	SyncedAt time.Time
	Now      time.Time
}

type messageVM struct {
	Visible bool
	Text    string
	Kind    string
}

// handleStream owns one browser tab's controller state. Every transition for
// that tab happens on this goroutine; fetches run concurrently and report back
// with their ticket so only the latest result is applied.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	client := strings.TrimSpace(r.URL.Query().Get("client"))
	sse := datastar.NewSSE(w, r)
	ctx := sse.Context()

	events, cancel := s.hub.subscribe()
	defer cancel()

	results := make(chan fetchResult, 4)
	hides := make(chan syncctl.Ticket, 4)
	st := syncctl.New()

	fetch := func() {
		var t syncctl.Ticket
		st, t = st.BeginFetch()
		go func() {
			snap, err := s.fetcher.ListActivities(ctx)
			select {
			case results <- fetchResult{ticket: t, snap: snap, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	fetch()
	s.patchStatus(sse, st)

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))

		case res := <-results:
			var applied bool
			st, applied = st.ApplyFetch(res.ticket, res.snap, res.err, s.now())
			if !applied {
				continue
			}
			if res.err != nil {
				s.logger.Warn("web: fetch failed", slog.String("client", client), slog.Any("error", res.err))
			}
			if err := s.patchView(sse, st); err != nil {
				s.logger.Error("web: patch view", slog.Any("error", err))
			}

		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.kind {
			case eventResync:
				if ev.client != "" && ev.client != client {
					continue
				}
				fetch()
				s.patchStatus(sse, st)
			case eventFeedback:
				if client == "" || ev.client != client {
					continue
				}
				var t syncctl.Ticket
				st, t = st.ShowFeedback(ev.feedback, s.now())
				s.patchMessage(sse, st)
				time.AfterFunc(ev.feedback.TTL, func() {
					select {
					case hides <- t:
					case <-ctx.Done():
					}
				})
			}

		case t := <-hides:
			// A timer for a message that was since replaced is a no-op.
			was := st.FeedbackVisible
			st = st.HideFeedback(t)
			if was && !st.FeedbackVisible {
				s.patchMessage(sse, st)
			}
		}
	}
}

func (s *Server) patchView(sse *datastar.ServerSentEventGenerator, st syncctl.State) error {
	frags, err := s.frags.Render(st.View)
	if err != nil {
		return err
	}
	if err := sse.PatchElements(frags.List, datastar.WithSelector("#activities-list"), datastar.WithMode(datastar.ElementPatchModeInner)); err != nil {
		return err
	}
	// The select is replaced whole, never appended to.
	if err := sse.PatchElements(frags.Select, datastar.WithSelector("#activity"), datastar.WithMode(datastar.ElementPatchModeOuter)); err != nil {
		return err
	}
	s.patchStatus(sse, st)
	return nil
}

func (s *Server) patchStatus(sse *datastar.ServerSentEventGenerator, st syncctl.State) {
	html, err := s.renderTemplate("sync-status", statusVM{
		Phase:    st.Phase.String(),
		Loading:  st.Phase == syncctl.Loading,
		Stale:    st.Stale(),
		Notice:   st.View.Notice,
		SyncedAt: st.SyncedAt,
		Now:      s.now(),
	})
	if err != nil {
		s.logger.Error("web: render status", slog.Any("error", err))
		return
	}
	_ = sse.PatchElements(html, datastar.WithSelector("#sync-status"), datastar.WithMode(datastar.ElementPatchModeOuter))
}

func (s *Server) patchMessage(sse *datastar.ServerSentEventGenerator, st syncctl.State) {
	html, err := s.renderTemplate("message", messageVM{
		Visible: st.FeedbackVisible,
		Text:    st.Feedback.Text,
		Kind:    string(st.Feedback.Kind),
	})
	if err != nil {
		s.logger.Error("web: render message", slog.Any("error", err))
		return
	}
	_ = sse.PatchElements(html, datastar.WithSelector("#message"), datastar.WithMode(datastar.ElementPatchModeOuter))
}

func humanizeSince(then, now time.Time) string {
	if then.IsZero() {
		return ""
	}
	return humanize.RelTime(then, now, "ago", "from now")
}
