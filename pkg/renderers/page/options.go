package page

import (
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-issueform/pkg/render/template"
)

// DefaultRuntimeURL is where the browser runtime is mounted by the server.
const DefaultRuntimeURL = "/runtime/issueform.js"

// Option configures the page renderer.
type Option func(*Renderer)

// WithTemplateRenderer swaps the template engine, for example to load
// templates from disk.
func WithTemplateRenderer(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithTheme applies a resolved go-theme configuration (name, variant, CSS
// variables and a stylesheet partial).
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = cfg
	}
}

// WithTitle overrides the page heading. The form summary is used otherwise.
func WithTitle(title string) Option {
	return func(r *Renderer) {
		r.title = strings.TrimSpace(title)
	}
}

// WithRuntimeURL changes the script URL of the browser runtime.
func WithRuntimeURL(url string) Option {
	return func(r *Renderer) {
		if url = strings.TrimSpace(url); url != "" {
			r.runtimeURL = url
		}
	}
}

// WithEndpoint overrides the form action; the form model endpoint is used
// otherwise.
func WithEndpoint(endpoint string) Option {
	return func(r *Renderer) {
		r.endpoint = strings.TrimSpace(endpoint)
	}
}
