package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-issueform/pkg/model"
	"github.com/goliatone/go-issueform/pkg/render"
	"github.com/goliatone/go-issueform/pkg/submission"
)

// Renderer implements render.Renderer for terminal-driven sessions. Render
// prompts for every field and serializes the collected values; Collect
// returns them as submission fields.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Collect prompts with the default renderer configured by options.
func Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions, options ...Option) (submission.Fields, error) {
	return New(options...).Collect(ctx, form, opts)
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatFormURLEncoded {
		return "application/x-www-form-urlencoded"
	}
	return "application/json"
}

// Render collects values and serializes them as a request body.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	fields, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(fields)
}

// Collect walks the form fields in order and prompts for each one. Invalid
// answers are reported through the driver and the field is asked again.
func (r *Renderer) Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions) (submission.Fields, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	if form.Summary != "" {
		if err := r.driver.Info(ctx, form.Summary); err != nil {
			return nil, err
		}
	}

	out := make(submission.Fields, len(form.Fields))
	for _, field := range form.Fields {
		value, err := r.promptField(ctx, field, opts)
		if err != nil {
			return nil, fmt.Errorf("tui: prompt %s: %w", field.Name, err)
		}
		out[field.Name] = value
	}
	return out, nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, opts render.RenderOptions) (string, error) {
	switch {
	case field.Type == model.FieldTypeBoolean:
		return r.promptBoolean(ctx, field, opts)
	case len(field.Enum) > 0:
		return r.promptEnum(ctx, field, opts)
	default:
		return r.promptString(ctx, field, opts)
	}
}

func (r *Renderer) promptString(ctx context.Context, field model.Field, opts render.RenderOptions) (string, error) {
	label := field.DisplayLabel()
	help := displayHelp(field)
	validate := fieldValidator(field)

	defaultVal := ""
	if !field.Secret() {
		defaultVal = defaultStringValue(field, opts)
	}

	for {
		var (
			response string
			err      error
		)
		switch {
		case field.Secret():
			response, err = r.driver.Password(ctx, InputConfig{Message: label, Help: help})
		case field.Widget == model.WidgetTextArea:
			response, err = r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: defaultVal, Help: help})
		default:
			response, err = r.driver.Input(ctx, InputConfig{Message: label, Default: defaultVal, Help: help})
		}
		if err != nil {
			return "", err
		}

		if err := validate(response); err != nil {
			if infoErr := r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", field.Name, err)); infoErr != nil {
				return "", infoErr
			}
			continue
		}
		return response, nil
	}
}

func (r *Renderer) promptBoolean(ctx context.Context, field model.Field, opts render.RenderOptions) (string, error) {
	def, _ := strconv.ParseBool(defaultStringValue(field, opts))
	resp, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: field.DisplayLabel(),
		Default: def,
		Help:    displayHelp(field),
	})
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(resp), nil
}

func (r *Renderer) promptEnum(ctx context.Context, field model.Field, opts render.RenderOptions) (string, error) {
	defaultIdx := indexOf(field.Enum, defaultStringValue(field, opts))

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      field.DisplayLabel(),
			Options:      field.Enum,
			DefaultIndex: defaultIdx,
			Help:         displayHelp(field),
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(field.Enum) {
			if infoErr := r.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", field.Name)); infoErr != nil {
				return "", infoErr
			}
			continue
		}
		return field.Enum[idx], nil
	}
}

func (r *Renderer) serialize(fields submission.Fields) ([]byte, error) {
	if r.outputFormat == OutputFormatFormURLEncoded {
		values := make(url.Values, len(fields))
		for key, value := range fields {
			values.Set(key, value)
		}
		return []byte(values.Encode()), nil
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("tui: encode values: %w", err)
	}
	return payload, nil
}

func displayHelp(field model.Field) string {
	if h := field.Metadata["cli.help"]; h != "" {
		return h
	}
	return field.Description
}

func defaultStringValue(field model.Field, opts render.RenderOptions) string {
	return opts.ValueFor(field.Name, field.Default)
}

// fieldValidator mirrors the constraints a browser enforces for the
// matching HTML control: required, url and email inputs, numeric inputs.
func fieldValidator(field model.Field) func(string) error {
	return func(value string) error {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			if field.Required {
				return errors.New("required")
			}
			return nil
		}
		switch field.InputType() {
		case "url":
			u, err := url.Parse(trimmed)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return errors.New("must be an absolute URL")
			}
		case "email":
			if _, err := mail.ParseAddress(trimmed); err != nil {
				return errors.New("must be an email address")
			}
		case "number":
			if field.Type == model.FieldTypeInteger {
				if _, err := strconv.ParseInt(trimmed, 10, 64); err != nil {
					return errors.New("must be an integer")
				}
			} else if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
				return errors.New("must be a number")
			}
		}
		return nil
	}
}
