package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-issueform"
	"github.com/goliatone/go-issueform/pkg/renderers/tui"
	"github.com/goliatone/go-issueform/pkg/submission"
)

// errSubmissionFailed marks a submission whose outcome is already on screen.
var errSubmissionFailed = errors.New("submission failed")

// newPromptDriver is swapped in tests.
var newPromptDriver = func(out io.Writer) tui.PromptDriver {
	return tui.NewSurveyDriver(out)
}

// terminalControl mirrors the submit button on the terminal.
type terminalControl struct {
	out    io.Writer
	logger *zap.Logger
}

func (c terminalControl) SetEnabled(enabled bool) {
	c.logger.Debug("submit control", zap.Bool("enabled", enabled))
}

func (c terminalControl) SetLabel(label string) {
	if label == submission.SubmittingLabel {
		fmt.Fprintln(c.out, label)
	}
}

func newSubmitCommand(flags *globalFlags) *cobra.Command {
	var (
		backend string
		dryRun  bool
		sets    []string
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Prompt for the issue fields and submit them to the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := flags.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if backend != "" {
				cfg.Submit.BackendURL = backend
			}
			prefill, err := parseSets(sets)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			form, err := issueform.LoadForm(ctx)
			if err != nil {
				return err
			}
			renderer := tui.New(tui.WithPromptDriver(newPromptDriver(out)))
			opts := issueform.RenderOptions{Values: prefill}

			if dryRun {
				payload, err := renderer.Render(ctx, form, opts)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(payload))
				return err
			}

			fields, err := renderer.Collect(ctx, form, opts)
			if err != nil {
				return err
			}

			ctrl, err := issueform.NewController(
				submission.WriterDisplay{W: out},
				terminalControl{out: out, logger: logger},
				cfg.Submit.BackendURL,
				submission.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			result, err := ctrl.Submit(ctx, fields)
			if err != nil {
				return err
			}
			if _, ok := result.(submission.Success); !ok {
				return errSubmissionFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "", "backend base URL (overrides config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the JSON payload instead of submitting it")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "prefill a field as name=value (repeatable)")
	return cmd
}

func parseSets(sets []string) (map[string]string, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	values := make(map[string]string, len(sets))
	for _, entry := range sets {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --set %q, expected name=value", entry)
		}
		values[strings.TrimSpace(name)] = value
	}
	return values, nil
}
