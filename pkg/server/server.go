// Package server exposes the issue form over HTTP: the form page, its browser
// runtime and the endpoint that turns a submission into a Jira issue.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-issueform/internal/generator"
	"github.com/goliatone/go-issueform/internal/jira"
	"github.com/goliatone/go-issueform/pkg/model"
	"github.com/goliatone/go-issueform/pkg/render"
	"github.com/goliatone/go-issueform/pkg/renderers/page"
)

// Routes served by Handler.
const (
	PathIndex       = "/"
	PathRuntime     = "/runtime/"
	PathCreateIssue = "/api/create_jira"
	PathHealth      = "/healthz"
)

// DefaultShutdownGrace bounds how long ListenAndServe waits for in-flight
// requests after its context is cancelled.
const DefaultShutdownGrace = 10 * time.Second

// Generator writes an issue description from a prompt.
type Generator interface {
	Host() string
	Ping(ctx context.Context) error
	Generate(ctx context.Context, prompt string) (string, error)
}

// IssueCreator creates issues on a Jira site.
type IssueCreator interface {
	CreateIssue(ctx context.Context, site string, creds jira.Credentials, req jira.IssueRequest) (*jira.Response, error)
}

// Server holds the handlers and their collaborators.
type Server struct {
	form        model.FormModel
	page        render.Renderer
	generator   Generator
	issues      IssueCreator
	runtime     fs.FS
	httpClient  *http.Client
	logger      *zap.Logger
	ollamaHost  string
	ollamaModel string
}

// New builds a Server for form.
func New(form model.FormModel, options ...Option) (*Server, error) {
	if len(form.Fields) == 0 {
		return nil, errors.New("server: form model has no fields")
	}

	s := &Server{
		form:       form,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.Named("server")

	if s.page == nil {
		renderer, err := page.New()
		if err != nil {
			return nil, fmt.Errorf("server: page renderer: %w", err)
		}
		s.page = renderer
	}
	if s.issues == nil {
		s.issues = jira.New(
			jira.WithTransport(s.httpClient.Transport),
			jira.WithLogger(s.logger),
		)
	}
	if s.generator == nil && s.ollamaHost != "" {
		gen, err := generator.New(s.ollamaHost,
			generator.WithModel(s.ollamaModel),
			generator.WithHTTPClient(s.httpClient),
			generator.WithLogger(s.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("server: generator: %w", err)
		}
		s.generator = gen
	}
	return s, nil
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(PathIndex, s.handleIndex)
	if s.runtime != nil {
		mux.Handle(PathRuntime, http.StripPrefix(PathRuntime, http.FileServerFS(s.runtime)))
	}
	mux.HandleFunc(PathCreateIssue, s.handleCreateIssue)
	mux.HandleFunc(PathHealth, s.handleHealth)
	return s.logRequests(mux)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	s.logger.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.logger.Info("stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
