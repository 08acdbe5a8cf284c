package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-issueform"
	"github.com/goliatone/go-issueform/pkg/contract"
	"github.com/goliatone/go-issueform/pkg/model"
	"github.com/goliatone/go-issueform/pkg/server"
)

type violation struct {
	file     string
	location string
	message  string
}

func newLintCommand() *cobra.Command {
	var operationID string
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check OpenAPI documents against what the form and backend expect",
		Long: "Lint OpenAPI documents for issue form contracts. With no paths the embedded " +
			"contract is checked.",
		RunE: func(cmd *cobra.Command, paths []string) error {
			ctx := cmd.Context()

			var violations []violation
			if len(paths) == 0 {
				form, err := issueform.LoadForm(ctx)
				if err != nil {
					return err
				}
				violations = lintForm("embedded", form)
			}
			for _, path := range paths {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				form, err := issueform.LoadFormFromData(ctx, raw, operationID)
				if err != nil {
					violations = append(violations, violation{file: path, location: operationID, message: err.Error()})
					continue
				}
				violations = append(violations, lintForm(path, form)...)
			}

			if len(violations) == 0 {
				return nil
			}
			reportViolations(cmd.ErrOrStderr(), violations)
			return fmt.Errorf("%d contract violation(s)", len(violations))
		},
	}
	cmd.Flags().StringVar(&operationID, "operation", contract.OperationID, "operation ID holding the form request body")
	return cmd
}

func lintForm(file string, form model.FormModel) []violation {
	var out []violation
	for _, name := range server.PayloadFields {
		field, ok := form.FieldByName(name)
		switch {
		case !ok:
			out = append(out, violation{file: file, location: name, message: "field is not declared"})
		case !field.Required:
			out = append(out, violation{file: file, location: name, message: "field must be required"})
		}
	}
	for _, field := range form.Fields {
		switch field.Widget {
		case "", model.WidgetInput, model.WidgetTextArea:
		case model.WidgetSelect:
			if len(field.Enum) == 0 {
				out = append(out, violation{file: file, location: field.Name, message: "select widget without enum"})
			}
		default:
			out = append(out, violation{file: file, location: field.Name, message: fmt.Sprintf("unknown widget %q", field.Widget)})
		}
	}
	return out
}

func reportViolations(w io.Writer, violations []violation) {
	sort.Slice(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].location == violations[j].location {
				return violations[i].message < violations[j].message
			}
			return violations[i].location < violations[j].location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(w, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
}
