package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"activities-cli/internal/logging"
	"activities-cli/internal/model"
)

func newTestServer(t *testing.T, acts []model.Activity) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	st, err := Open(ctx, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Seed(ctx, acts); err != nil {
		t.Fatalf("seed: %v", err)
	}
	srv := httptest.NewServer(NewServer(st, logging.Discard()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, rawURL string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, rawURL, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, rawURL, err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode %s %s: %v", method, rawURL, err)
	}
	return resp.StatusCode, body
}

func mutationURL(base, activity, tail, email string) string {
	return base + "/activities/" + url.PathEscape(activity) + "/" + tail + "?email=" + url.QueryEscape(email)
}

func TestServer_ListActivities(t *testing.T) {
	srv := newTestServer(t, SeedActivities())

	resp, err := http.Get(srv.URL + "/activities")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var snap model.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	names := snap.Names()
	if len(names) != len(SeedActivities()) || names[0] != "Chess Club" {
		t.Fatalf("unexpected activities: %v", names)
	}
	chess, _ := snap.Get("Chess Club")
	if !chess.HasParticipant("michael@mergington.edu") || chess.MaxParticipants != 12 {
		t.Fatalf("unexpected chess club: %+v", chess)
	}
}

func TestServer_SignupThenDuplicateThenUnregister(t *testing.T) {
	srv := newTestServer(t, SeedActivities())
	email := "newstudent@mergington.edu"

	status, body := do(t, http.MethodPost, mutationURL(srv.URL, "Chess Club", "signup", email))
	if status != http.StatusOK || body["message"] != "Signed up "+email+" for Chess Club" {
		t.Fatalf("signup: %d %v", status, body)
	}

	status, body = do(t, http.MethodPost, mutationURL(srv.URL, "Chess Club", "signup", email))
	if status != http.StatusBadRequest || body["detail"] != "Student is already signed up" {
		t.Fatalf("duplicate signup: %d %v", status, body)
	}

	status, body = do(t, http.MethodDelete, mutationURL(srv.URL, "Chess Club", "participants", email))
	if status != http.StatusOK || body["message"] != "Unregistered "+email+" from Chess Club" {
		t.Fatalf("unregister: %d %v", status, body)
	}

	status, body = do(t, http.MethodDelete, mutationURL(srv.URL, "Chess Club", "participants", email))
	if status != http.StatusNotFound || body["detail"] != "Student is not signed up for this activity" {
		t.Fatalf("second unregister: %d %v", status, body)
	}
}

func TestServer_UnknownActivity(t *testing.T) {
	srv := newTestServer(t, SeedActivities())

	status, body := do(t, http.MethodPost, mutationURL(srv.URL, "Underwater Basket Weaving", "signup", "a@b.c"))
	if status != http.StatusNotFound || body["detail"] != "Activity not found" {
		t.Fatalf("signup: %d %v", status, body)
	}
	status, _ = do(t, http.MethodDelete, mutationURL(srv.URL, "Underwater Basket Weaving", "participants", "a@b.c"))
	if status != http.StatusNotFound {
		t.Fatalf("unregister: expected 404, got %d", status)
	}
}

func TestServer_FullActivity(t *testing.T) {
	srv := newTestServer(t, []model.Activity{{Name: "Tiny", MaxParticipants: 1, Participants: []string{"a@x"}}})

	status, body := do(t, http.MethodPost, mutationURL(srv.URL, "Tiny", "signup", "b@x"))
	if status != http.StatusBadRequest || body["detail"] != "Activity is full" {
		t.Fatalf("expected full, got %d %v", status, body)
	}
}

func TestServer_MissingEmail(t *testing.T) {
	srv := newTestServer(t, SeedActivities())

	status, body := do(t, http.MethodPost, srv.URL+"/activities/Chess%20Club/signup")
	if status != http.StatusUnprocessableEntity || body["detail"] == nil {
		t.Fatalf("expected 422 with detail, got %d %v", status, body)
	}
}

func TestServer_NameWithSlash(t *testing.T) {
	srv := newTestServer(t, []model.Activity{{Name: "Art/Design", MaxParticipants: 5}})

	status, body := do(t, http.MethodPost, mutationURL(srv.URL, "Art/Design", "signup", "a@x"))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}
}

func TestStore_SeedKeepsExistingRosters(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()

	acts := []model.Activity{{Name: "Chess", MaxParticipants: 3}}
	if err := st.Seed(ctx, acts); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := st.Signup(ctx, "Chess", "a@x"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := st.Seed(ctx, acts); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	snap, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	chess, _ := snap.Get("Chess")
	if snap.Len() != 1 || !chess.HasParticipant("a@x") {
		t.Fatalf("unexpected snapshot after reseed: %+v", snap.Activities())
	}
}
