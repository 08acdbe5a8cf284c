package main

import (
	"fmt"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-issueform"
	"github.com/goliatone/go-issueform/pkg/render"
	"github.com/goliatone/go-issueform/pkg/renderers/page"
	"github.com/goliatone/go-issueform/pkg/renderers/tui"
)

func newRenderCommand() *cobra.Command {
	var (
		output       string
		rendererName string
		title        string
		runtimeURL   string
		themeName    string
		variant      string
		cssVars      []string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the issue form as an HTML page or a terminal prompt session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			form, err := issueform.LoadForm(ctx)
			if err != nil {
				return err
			}

			options := []page.Option{
				page.WithTitle(title),
				page.WithRuntimeURL(runtimeURL),
			}
			if themeName != "" || len(cssVars) > 0 {
				vars, err := parseSets(cssVars)
				if err != nil {
					return err
				}
				options = append(options, page.WithTheme(&theme.RendererConfig{
					Theme:   themeName,
					Variant: variant,
					CSSVars: vars,
				}))
			}

			pageRenderer, err := page.New(options...)
			if err != nil {
				return err
			}
			registry, err := render.NewRegistry(
				pageRenderer,
				tui.New(tui.WithPromptDriver(newPromptDriver(cmd.ErrOrStderr()))),
			)
			if err != nil {
				return err
			}
			renderer, err := registry.Get(rendererName)
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(registry.List(), ", "))
			}

			html, err := renderer.Render(ctx, form, issueform.RenderOptions{})
			if err != nil {
				return fmt.Errorf("render form: %w", err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(html)
				return err
			}
			if err := os.WriteFile(output, html, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&rendererName, "renderer", "r", "page", "renderer to use (page, tui)")
	cmd.Flags().StringVar(&title, "title", "", "page title")
	cmd.Flags().StringVar(&runtimeURL, "runtime-url", page.DefaultRuntimeURL, "URL of the browser runtime script")
	cmd.Flags().StringVar(&themeName, "theme", "", "theme name exposed as data-theme")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant exposed as data-theme-variant")
	cmd.Flags().StringArrayVar(&cssVars, "css-var", nil, "CSS custom property as --name=value (repeatable)")
	return cmd
}
