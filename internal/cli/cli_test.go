package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"activities-cli/internal/devserver"
	"activities-cli/internal/dispatch"
	"activities-cli/internal/logging"
	"activities-cli/internal/render"
)

type countingHandler struct {
	next      http.Handler
	gets      atomic.Int32
	mutations atomic.Int32
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.gets.Add(1)
	} else {
		h.mutations.Add(1)
	}
	h.next.ServeHTTP(w, r)
}

func startService(t *testing.T) (*httptest.Server, *countingHandler) {
	t.Helper()
	ctx := context.Background()
	store, err := devserver.Open(ctx, "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Seed(ctx, devserver.SeedActivities()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h := &countingHandler{next: devserver.NewServer(store, logging.Discard()).Handler()}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, h
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	// Keep stderr down to the user-facing text.
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestList_JSONKeepsServerOrder(t *testing.T) {
	srv, _ := startService(t)

	out, _, err := execute(t, "", "--url", srv.URL, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	chess := strings.Index(out, `"Chess Club"`)
	debate := strings.Index(out, `"Debate Team"`)
	if chess < 0 || debate < 0 || chess > debate {
		t.Fatalf("expected seed order in output, got %s", out)
	}
	if !strings.Contains(out, `"michael@mergington.edu"`) {
		t.Fatalf("expected roster in output, got %s", out)
	}
}

func TestList_MarkdownDocument(t *testing.T) {
	srv, _ := startService(t)

	out, _, err := execute(t, "", "--url", srv.URL, "list", "--format", "md")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "## Chess Club") || !strings.Contains(out, "spots left") {
		t.Fatalf("unexpected markdown: %s", out)
	}
}

func TestList_UnknownFormatFails(t *testing.T) {
	srv, h := startService(t)

	_, errOut, err := execute(t, "", "--url", srv.URL, "list", "--format", "yaml")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(errOut, "unknown format") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
	if h.gets.Load() != 0 {
		t.Fatalf("expected no fetch, got %d", h.gets.Load())
	}
}

func TestList_FetchFailurePrintsNotice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	out, errOut, err := execute(t, "", "--url", srv.URL, "list")
	if err == nil {
		t.Fatalf("expected error")
	}
	if out != "" {
		t.Fatalf("expected no stdout, got %q", out)
	}
	if strings.TrimSpace(errOut) != render.FailureNotice {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestSignup_PrintsServerMessage(t *testing.T) {
	srv, h := startService(t)

	out, _, err := execute(t, "", "--url", srv.URL, "signup", "--activity", "Chess Club", "--email", " new@mergington.edu ")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if strings.TrimSpace(out) != "Signed up new@mergington.edu for Chess Club" {
		t.Fatalf("unexpected output: %q", out)
	}
	if h.mutations.Load() != 1 {
		t.Fatalf("expected 1 mutation, got %d", h.mutations.Load())
	}

	_, errOut, err := execute(t, "", "--url", srv.URL, "signup", "--activity", "Chess Club", "--email", "new@mergington.edu")
	if err == nil {
		t.Fatalf("expected duplicate signup to fail")
	}
	if strings.TrimSpace(errOut) != "Student is already signed up" {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestSignup_MissingInputSendsNothing(t *testing.T) {
	srv, h := startService(t)

	_, errOut, err := execute(t, "", "--url", srv.URL, "signup", "--activity", "Chess Club")
	if err == nil {
		t.Fatalf("expected error")
	}
	if strings.TrimSpace(errOut) != dispatch.MsgMissingInput {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
	if h.mutations.Load() != 0 {
		t.Fatalf("expected no request, got %d", h.mutations.Load())
	}
}

func TestUnregister_DeclinedSendsNothing(t *testing.T) {
	srv, h := startService(t)

	for _, answer := range []string{"n\n", "\n", ""} {
		out, errOut, err := execute(t, answer, "--url", srv.URL, "unregister", "--activity", "Chess Club", "--email", "michael@mergington.edu")
		if err != nil {
			t.Fatalf("answer %q: %v", answer, err)
		}
		if out != "" {
			t.Fatalf("answer %q: expected no output, got %q", answer, out)
		}
		if !strings.Contains(errOut, "Unregister michael@mergington.edu from Chess Club? [y/N]") {
			t.Fatalf("answer %q: missing prompt: %q", answer, errOut)
		}
	}
	if got := h.mutations.Load(); got != 0 {
		t.Fatalf("expected zero mutations, got %d", got)
	}
}

func TestUnregister_ConfirmedRemovesParticipant(t *testing.T) {
	srv, h := startService(t)

	out, _, err := execute(t, "y\n", "--url", srv.URL, "unregister", "--activity", "Chess Club", "--email", "michael@mergington.edu")
	if err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if strings.TrimSpace(out) != "Unregistered michael@mergington.edu from Chess Club" {
		t.Fatalf("unexpected output: %q", out)
	}

	_, errOut, err := execute(t, "", "--url", srv.URL, "unregister", "--yes", "--activity", "Chess Club", "--email", "michael@mergington.edu")
	if err == nil {
		t.Fatalf("expected second unregister to fail")
	}
	if strings.TrimSpace(errOut) != "Student is not signed up for this activity" {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
	if got := h.mutations.Load(); got != 2 {
		t.Fatalf("expected 2 mutations, got %d", got)
	}
}

func TestRoot_RejectsNonHTTPURL(t *testing.T) {
	_, errOut, err := execute(t, "", "--url", "ftp://example.com", "list")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(errOut, "must be http(s)") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestRoot_URLFlagOverridesBadEnv(t *testing.T) {
	srv, _ := startService(t)
	t.Setenv("ACTIVITIES_URL", "ftp://bad.example.com")

	out, _, err := execute(t, "", "--url", srv.URL, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"Chess Club"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}
