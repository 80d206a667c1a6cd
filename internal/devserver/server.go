// Package devserver is a reference Remote Activity Service for local use and
// end-to-end tests. It implements the same contract the client consumes.
package devserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"activities-cli/internal/model"

	"github.com/gorilla/mux"
)

type Server struct {
	store  *Store
	logger *slog.Logger
}

func NewServer(store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, logger: logger}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	// Activity names may contain "/", so route on the escaped path.
	r.UseEncodedPath()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/activities", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/activities/{activity}/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/activities/{activity}/participants", s.handleUnregister).Methods(http.MethodDelete)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.List(r.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	activity, email, ok := s.mutationArgs(w, r)
	if !ok {
		return
	}
	if err := s.store.Signup(r.Context(), activity, email); err != nil {
		s.mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed up " + email + " for " + activity})
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	activity, email, ok := s.mutationArgs(w, r)
	if !ok {
		return
	}
	if err := s.store.Unregister(r.Context(), activity, email); err != nil {
		s.mutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Unregistered " + email + " from " + activity})
}

func (s *Server) mutationArgs(w http.ResponseWriter, r *http.Request) (activity, email string, ok bool) {
	activity, err := url.PathUnescape(mux.Vars(r)["activity"])
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid activity name")
		return "", "", false
	}
	email = strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Email is required")
		return "", "", false
	}
	return activity, email, true
}

func (s *Server) mutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrActivityNotFound):
		writeDetail(w, http.StatusNotFound, "Activity not found")
	case errors.Is(err, ErrAlreadyRegistered):
		writeDetail(w, http.StatusBadRequest, "Student is already signed up")
	case errors.Is(err, ErrActivityFull):
		writeDetail(w, http.StatusBadRequest, "Activity is full")
	case errors.Is(err, ErrNotRegistered):
		writeDetail(w, http.StatusNotFound, "Student is not signed up for this activity")
	default:
		s.internalError(w, err)
	}
}

// internalError logs the real error and returns a generic detail.
func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("internal_error", slog.Any("error", err))
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.EscapedPath()),
			slog.Int("status", rec.status),
			slog.Duration("took", time.Since(start)),
			slog.String("request_id", r.Header.Get("X-Request-ID")))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SeedActivities is the default data set for a fresh dev server.
func SeedActivities() []model.Activity {
	return []model.Activity{
		{
			Name:            "Chess Club",
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 12,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		},
		{
			Name:            "Programming Class",
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
		{
			Name:            "Gym Class",
			Description:     "Physical education and sports activities",
			Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
			MaxParticipants: 30,
			Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
		},
		{
			Name:            "Soccer Team",
			Description:     "Join the school soccer team and compete in matches",
			Schedule:        "Tuesdays and Thursdays, 4:00 PM - 5:30 PM",
			MaxParticipants: 22,
			Participants:    []string{},
		},
		{
			Name:            "Art Club",
			Description:     "Explore your creativity through painting and drawing",
			Schedule:        "Wednesdays, 3:30 PM - 5:00 PM",
			MaxParticipants: 15,
			Participants:    []string{"amelia@mergington.edu"},
		},
		{
			Name:            "Debate Team",
			Description:     "Develop public speaking and argumentation skills",
			Schedule:        "Fridays, 4:00 PM - 5:30 PM",
			MaxParticipants: 12,
			Participants:    []string{},
		},
	}
}
