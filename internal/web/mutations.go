package web

import (
	"log/slog"
	"net/http"
	"strings"

	"activities-cli/internal/dispatch"
	"activities-cli/internal/syncctl"

	"github.com/starfederation/datastar-go/datastar"
)

// publishOutcome sends the feedback to the submitting tab and, on success,
// asks every open tab to re-fetch.
func (s *Server) publishOutcome(client string, out dispatch.Outcome) {
	s.hub.broadcast(hubEvent{kind: eventFeedback, client: client, feedback: out.Feedback})
	if out.Resync {
		s.hub.broadcast(hubEvent{kind: eventResync})
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	client := strings.TrimSpace(r.PostForm.Get("client"))
	activity := r.PostForm.Get("activity")
	email := strings.TrimSpace(r.PostForm.Get("email"))

	release, ok := s.guard.Acquire(syncctl.Key{Op: dispatch.OpRegister, Activity: activity, Participant: email})
	if !ok {
		s.logger.Debug("web: duplicate signup ignored", slog.String("activity", activity))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	out := s.mutator.Register(r.Context(), activity, email)
	release()

	s.logger.Info("web: signup", slog.String("activity", activity), slog.Bool("ok", out.OK()))
	s.publishOutcome(client, out)

	if !out.ClearForm {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	sse := datastar.NewSSE(w, r)
	_ = sse.ExecuteScript(`document.getElementById('signup-form').reset()`)
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	client := strings.TrimSpace(q.Get("client"))
	activity := q.Get("activity")
	email := q.Get("email")

	release, ok := s.guard.Acquire(syncctl.Key{Op: dispatch.OpUnregister, Activity: activity, Participant: email})
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	out := s.mutator.Unregister(r.Context(), activity, email)
	release()

	s.logger.Info("web: unregister", slog.String("activity", activity), slog.Bool("ok", out.OK()))
	s.publishOutcome(client, out)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	client := strings.TrimSpace(r.URL.Query().Get("client"))
	if client == "" {
		http.Error(w, "client is required", http.StatusBadRequest)
		return
	}
	s.hub.broadcast(hubEvent{kind: eventResync, client: client})
	w.WriteHeader(http.StatusNoContent)
}
