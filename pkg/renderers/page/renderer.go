// Package page renders the issue form as a standalone HTML page wired to the
// browser runtime. Element ids are part of the runtime contract and must not
// change independently of issueform.js.
package page

import (
	"context"
	"errors"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-issueform/pkg/model"
	"github.com/goliatone/go-issueform/pkg/render"
	"github.com/goliatone/go-issueform/pkg/render/template"
	"github.com/goliatone/go-issueform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-issueform/pkg/submission"
)

// DOM ids shared with the browser runtime.
const (
	FormID   = "jira-form"
	OutputID = "result-output"
	SubmitID = "submit-btn"
)

const (
	pageTemplate  = "page"
	defaultTitle  = "Create Jira Issue"
	fieldIDPrefix = "field-"
)

// Renderer produces the HTML page for a form model.
type Renderer struct {
	engine     template.TemplateRenderer
	theme      *theme.RendererConfig
	title      string
	endpoint   string
	runtimeURL string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a page renderer backed by the embedded templates unless
// WithTemplateRenderer is supplied.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		runtimeURL: DefaultRuntimeURL,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.engine == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()))
		if err != nil {
			return nil, fmt.Errorf("page: configure template engine: %w", err)
		}
		r.engine = engine
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "page"
}

// ContentType reports the media type of Render's output.
func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render executes the page template for form.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("page: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(form.Fields) == 0 {
		return nil, errors.New("page: form has no fields")
	}

	out, err := r.engine.RenderTemplate(pageTemplate, r.viewData(form, opts))
	if err != nil {
		return nil, fmt.Errorf("page: render: %w", err)
	}
	return []byte(out), nil
}

type fieldView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Widget      string       `json:"widget"`
	InputType   string       `json:"input_type"`
	Value       string       `json:"value"`
	Placeholder string       `json:"placeholder,omitempty"`
	Help        string       `json:"help,omitempty"`
	Required    bool         `json:"required"`
	Secret      bool         `json:"secret"`
	Options     []optionView `json:"options,omitempty"`
}

type optionView struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

func (r *Renderer) viewData(form model.FormModel, opts render.RenderOptions) map[string]any {
	title := r.title
	if title == "" {
		title = strings.TrimSpace(form.Summary)
	}
	if title == "" {
		title = defaultTitle
	}

	endpoint := r.endpoint
	if endpoint == "" {
		endpoint = form.Endpoint
	}
	if endpoint == "" {
		endpoint = submission.DefaultEndpointPath
	}

	fields := make([]fieldView, 0, len(form.Fields))
	for _, field := range form.Fields {
		fields = append(fields, buildFieldView(field, opts))
	}

	return map[string]any{
		"title":        title,
		"description":  strings.TrimSpace(form.Description),
		"endpoint":     endpoint,
		"fields":       fields,
		"submit_label": submission.IdleLabel,
		"runtime_url":  r.runtimeURL,
		"theme":        buildThemeContext(r.theme),
		"ids": map[string]string{
			"form":   FormID,
			"output": OutputID,
			"submit": SubmitID,
		},
	}
}

func buildFieldView(field model.Field, opts render.RenderOptions) fieldView {
	value := opts.ValueFor(field.Name, field.Default)
	if field.Secret() {
		value = ""
	}

	view := fieldView{
		ID:          fieldIDPrefix + field.Name,
		Name:        field.Name,
		Label:       field.DisplayLabel(),
		Widget:      field.Widget,
		InputType:   field.InputType(),
		Value:       value,
		Placeholder: field.Placeholder,
		Help:        sanitizeHelp(field.Description),
		Required:    field.Required,
		Secret:      field.Secret(),
	}
	if view.Widget == "" {
		view.Widget = model.WidgetInput
	}
	if view.Widget == model.WidgetSelect {
		for _, option := range field.Enum {
			view.Options = append(view.Options, optionView{
				Value:    option,
				Selected: option == value,
			})
		}
	}
	return view
}
