package server

import (
	"io/fs"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-issueform/pkg/render"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger attaches a logger. A no-op logger is used otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOllama configures the model server used to write descriptions. An
// empty host leaves the server without a generator and every create request
// reports the host as missing.
func WithOllama(host, model string) Option {
	return func(s *Server) {
		s.ollamaHost = host
		s.ollamaModel = model
	}
}

// WithGenerator replaces the generator built from WithOllama.
func WithGenerator(gen Generator) Option {
	return func(s *Server) {
		if gen != nil {
			s.generator = gen
		}
	}
}

// WithIssueCreator replaces the Jira client.
func WithIssueCreator(issues IssueCreator) Option {
	return func(s *Server) {
		if issues != nil {
			s.issues = issues
		}
	}
}

// WithPageRenderer replaces the renderer serving the form page.
func WithPageRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.page = renderer
		}
	}
}

// WithRuntimeFS serves the browser runtime under /runtime/.
func WithRuntimeFS(assets fs.FS) Option {
	return func(s *Server) {
		s.runtime = assets
	}
}

// WithHTTPClient sets the client used for outbound calls to Ollama and Jira.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) {
		if client != nil {
			s.httpClient = client
		}
	}
}
