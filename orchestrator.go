// Package issueform wires the issue form contract, its renderers and the
// backend that turns a submission into a Jira issue.
package issueform

import (
	"context"
	"fmt"

	"github.com/goliatone/go-issueform/pkg/render"
	"github.com/goliatone/go-issueform/pkg/server"
	"github.com/goliatone/go-issueform/pkg/submission"
)

// RenderOptions describes per-request prefill values for renderers.
type RenderOptions = render.RenderOptions

// Fields aliases submission.Fields.
type Fields = submission.Fields

// NewServer loads the embedded contract and returns a server that also
// serves the browser runtime. Options are applied after the defaults.
func NewServer(ctx context.Context, options ...server.Option) (*server.Server, error) {
	form, err := LoadForm(ctx)
	if err != nil {
		return nil, fmt.Errorf("issueform: load form: %w", err)
	}
	opts := append([]server.Option{server.WithRuntimeFS(RuntimeAssetsFS())}, options...)
	return server.New(form, opts...)
}

// NewController returns a submission controller posting to the backend at
// baseURL.
func NewController(display submission.Display, control submission.Control, baseURL string, options ...submission.Option) (*submission.Controller, error) {
	opts := append([]submission.Option{submission.WithBaseURL(baseURL)}, options...)
	return submission.NewController(display, control, opts...)
}
