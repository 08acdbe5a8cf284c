package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-issueform/pkg/model"
)

func TestLoadEmbeddedDocument(t *testing.T) {
	form, err := Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if form.OperationID != OperationID || form.Endpoint != "/api/create_jira" || form.Method != "POST" {
		t.Fatalf("unexpected operation metadata: %+v", form)
	}

	wantRequired := []string{
		"jira_url", "jira_email", "api_token", "project_key",
		"issue_summary", "issue_type", "ollama_prompt",
	}
	if diff := cmp.Diff(wantRequired, form.RequiredNames()); diff != "" {
		t.Fatalf("required names mismatch (-want +got):\n%s", diff)
	}

	token, ok := form.FieldByName("api_token")
	if !ok || !token.Secret() || token.InputType() != "password" {
		t.Fatalf("api_token should be a secret password field: %+v", token)
	}

	prompt, _ := form.FieldByName("ollama_prompt")
	if prompt.Widget != model.WidgetTextArea {
		t.Fatalf("ollama_prompt widget = %q", prompt.Widget)
	}

	issueType, _ := form.FieldByName("issue_type")
	want := model.Field{
		Name:     "issue_type",
		Type:     model.FieldTypeString,
		Required: true,
		Label:    "Issue Type",
		Default:  "Task",
		Enum:     []string{"Task", "Bug", "Story", "Epic"},
		Widget:   model.WidgetSelect,
	}
	if diff := cmp.Diff(want, issueType); diff != "" {
		t.Fatalf("issue_type mismatch (-want +got):\n%s", diff)
	}

	jiraURL, _ := form.FieldByName("jira_url")
	if jiraURL.InputType() != "url" || jiraURL.Placeholder != "https://your-domain.atlassian.net" {
		t.Fatalf("unexpected jira_url field: %+v", jiraURL)
	}
}

func TestLoadFromDataOrdersOptionalFieldsAfterRequired(t *testing.T) {
	doc := []byte(`
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /submit:
    post:
      operationId: submit
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [zeta]
              properties:
                zeta: {type: string}
                beta: {type: integer}
                alpha: {type: boolean}
      responses:
        '200': {description: ok}
`)
	form, err := LoadFromData(context.Background(), doc, "submit")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var names []string
	for _, field := range form.Fields {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "beta"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if form.Fields[1].Type != model.FieldTypeBoolean || form.Fields[2].Type != model.FieldTypeInteger {
		t.Fatalf("unexpected field types: %+v", form.Fields)
	}
}

func TestLoadFromDataErrors(t *testing.T) {
	noBody := []byte(`
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /ping:
    get:
      operationId: ping
      responses:
        '200': {description: ok}
`)

	tests := []struct {
		name string
		raw  []byte
		op   string
		want error
	}{
		{name: "unknown operation", raw: Document(), op: "deleteEverything", want: ErrOperationNotFound},
		{name: "no request body", raw: noBody, op: "ping", want: ErrNoRequestSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromData(context.Background(), tt.raw, tt.op)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := LoadFromData(context.Background(), nil, OperationID); err == nil {
		t.Fatal("expected error for empty document")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
