// Package web is the browser client: a page whose activity list and selection
// control are kept current over a Datastar SSE stream.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"activities-cli/internal/dispatch"
	"activities-cli/internal/render"
	"activities-cli/internal/syncctl"

	"github.com/google/uuid"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

const defaultDatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

type ServerConfig struct {
	Addr  string
	Title string
	// DatastarURL is the Datastar client bundle the page loads.
	DatastarURL string
}

// Mutator performs confirmed mutations and interprets their results.
type Mutator interface {
	Register(ctx context.Context, activity, participant string) dispatch.Outcome
	Unregister(ctx context.Context, activity, participant string) dispatch.Outcome
}

type Server struct {
	cfg     ServerConfig
	fetcher syncctl.Fetcher
	mutator Mutator
	logger  *slog.Logger
	now     func() time.Time

	tmpl  *template.Template
	frags *render.HTMLRenderer
	hub   *resourceHub
	guard *syncctl.Guard
}

func NewServer(cfg ServerConfig, fetcher syncctl.Fetcher, mutator Mutator, logger *slog.Logger) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.Title = strings.TrimSpace(cfg.Title)
	cfg.DatastarURL = strings.TrimSpace(cfg.DatastarURL)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if fetcher == nil || mutator == nil {
		return nil, errors.New("web: fetcher and mutator are required")
	}
	if cfg.Title == "" {
		cfg.Title = "Mergington High School"
	}
	if cfg.DatastarURL == "" {
		cfg.DatastarURL = defaultDatastarURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"humanizeSince": humanizeSince,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	frags, err := render.NewHTMLRenderer(render.HTMLOptions{Description: renderDescription})
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		fetcher: fetcher,
		mutator: mutator,
		logger:  logger,
		now:     time.Now,
		tmpl:    tmpl,
		frags:   frags,
		hub:     newResourceHub(),
		guard:   &syncctl.Guard{},
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /activities/stream", s.handleStream)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("DELETE /participants", s.handleUnregister)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.HandleFunc("GET /{$}", s.handleHome)
	return mux
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type pageVM struct {
	Title       string
	DatastarURL string
	Client      string
	Select      template.HTML
	Status      statusVM
	Message     messageVM
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	frags, err := s.frags.Render(render.View{})
	if err != nil {
		s.internalError(w, err)
		return
	}
	s.writeHTMLTemplate(w, "page", pageVM{
		Title:       s.cfg.Title,
		DatastarURL: s.cfg.DatastarURL,
		// Each page load gets its own id so feedback reaches only its own stream.
		Client: uuid.NewString(),
		Select: template.HTML(frags.Select),
		Status: statusVM{Phase: syncctl.Loading.String(), Loading: true, Now: s.now()},
	})
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("web: internal error", slog.Any("error", err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
