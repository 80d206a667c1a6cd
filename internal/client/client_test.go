package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestListActivities_DecodesInServerOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/activities" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Errorf("expected request id header")
		}
		_, _ = w.Write([]byte(`{"B": {"description": "b", "schedule": "s", "max_participants": 1, "participants": []},
			"A": {"description": "a", "schedule": "s", "max_participants": 2, "participants": ["x@y"]}}`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/"})
	snap, err := c.ListActivities(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := strings.Join(snap.Names(), ","); got != "B,A" {
		t.Fatalf("expected B,A, got %s", got)
	}
}

func TestListActivities_MalformedBodyIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL}).ListActivities(context.Background())
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %T %v", err, err)
	}
}

func TestSignup_EncodesPathAndQuery(t *testing.T) {
	var gotPath, gotEmail, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		gotEmail = r.URL.Query().Get("email")
		_, _ = w.Write([]byte(`{"message": "Signed up a+b@example.com for Art/Design Club"}`))
	}))
	defer srv.Close()

	msg, err := New(Options{BaseURL: srv.URL}).Signup(context.Background(), "Art/Design Club", "a+b@example.com")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/activities/Art%2FDesign%20Club/signup" {
		t.Fatalf("unexpected escaped path %q", gotPath)
	}
	if gotEmail != "a+b@example.com" {
		t.Fatalf("unexpected email %q", gotEmail)
	}
	if msg != "Signed up a+b@example.com for Art/Design Club" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestUnregister_APIErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/activities/Chess Club/participants" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "Participant not found"}`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL}).Unregister(context.Background(), "Chess Club", "x@y")
	var ae *APIError
	if !errors.As(err, &ae) {
		t.Fatalf("expected APIError, got %T %v", err, err)
	}
	if ae.Status != http.StatusNotFound || Detail(err) != "Participant not found" {
		t.Fatalf("unexpected api error %+v", ae)
	}
}

func TestMutate_NonStringDetailIsIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": [{"msg": "field required"}]}`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL}).Signup(context.Background(), "Chess Club", "")
	if Detail(err) != "" {
		t.Fatalf("expected empty detail, got %q", Detail(err))
	}
}

func TestMutate_SuccessWithoutMessageIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL}).Signup(context.Background(), "Chess Club", "a@b")
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %T %v", err, err)
	}
}

func TestDo_TransportErrorWhenServerIsGone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(Options{BaseURL: url, Timeout: time.Second}).Unregister(context.Background(), "Chess Club", "a@b")
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %T %v", err, err)
	}
}
