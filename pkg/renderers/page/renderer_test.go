package page

import (
	"context"
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-issueform/pkg/contract"
	"github.com/goliatone/go-issueform/pkg/model"
	"github.com/goliatone/go-issueform/pkg/render"
)

func loadForm(t *testing.T) model.FormModel {
	t.Helper()
	form, err := contract.Load(context.Background())
	if err != nil {
		t.Fatalf("load contract: %v", err)
	}
	return form
}

func renderPage(t *testing.T, form model.FormModel, opts render.RenderOptions, options ...Option) string {
	t.Helper()
	r, err := New(options...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), form, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return string(out)
}

func TestRenderEmitsRuntimeContractIDs(t *testing.T) {
	html := renderPage(t, loadForm(t), render.RenderOptions{})

	for _, want := range []string{
		`<form id="jira-form" action="/api/create_jira" method="post">`,
		`<button type="submit" id="submit-btn">Generate &amp; Create Issue</button>`,
		`<pre id="result-output" aria-live="polite"></pre>`,
		`<script src="/runtime/issueform.js" defer></script>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected page to contain %q\n%s", want, html)
		}
	}
}

func TestRenderFieldWidgets(t *testing.T) {
	html := renderPage(t, loadForm(t), render.RenderOptions{})

	for _, want := range []string{
		`<input type="url" id="field-jira_url" name="jira_url" value="" placeholder="https://your-domain.atlassian.net" required>`,
		`<input type="email" id="field-jira_email" name="jira_email"`,
		`<input type="password" id="field-api_token" name="api_token" value="" autocomplete="off" required>`,
		`<textarea id="field-ollama_prompt" name="ollama_prompt" rows="6" required></textarea>`,
		`<option value="Task" selected>Task</option>`,
		`<option value="Bug">Bug</option>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected page to contain %q\n%s", want, html)
		}
	}
}

func TestRenderSanitizesHelpText(t *testing.T) {
	form := model.FormModel{
		Endpoint: "/api/create_jira",
		Fields: []model.Field{{
			Name:        "jira_url",
			Type:        model.FieldTypeString,
			Description: `Use <code>https://x</code><script>alert(1)</script>`,
		}},
	}
	html := renderPage(t, form, render.RenderOptions{})

	if !strings.Contains(html, `Use <code>https://x</code>`) {
		t.Fatalf("expected allowed markup to survive\n%s", html)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatalf("expected script to be stripped\n%s", html)
	}
}

func TestRenderPrefillSkipsSecrets(t *testing.T) {
	html := renderPage(t, loadForm(t), render.RenderOptions{
		Values: map[string]string{
			"jira_url":   "https://jira.example.com",
			"api_token":  "s3cret",
			"issue_type": "Bug",
		},
	})

	if !strings.Contains(html, `value="https://jira.example.com"`) {
		t.Fatalf("expected jira_url prefill\n%s", html)
	}
	if strings.Contains(html, "s3cret") {
		t.Fatalf("secret value leaked into page")
	}
	if !strings.Contains(html, `<option value="Bug" selected>Bug</option>`) {
		t.Fatalf("expected Bug to be selected\n%s", html)
	}
}

func TestRenderAppliesTheme(t *testing.T) {
	cfg := &theme.RendererConfig{
		Theme:   "acme",
		Variant: "dark",
		CSSVars: map[string]string{
			"--brand": "#123456",
			"ignored": "red",
		},
		Partials: map[string]string{
			"stylesheet": "issueform.css",
		},
		AssetURL: func(key string) string {
			if key == "" {
				return ""
			}
			return "/themes/acme/" + key
		},
	}
	html := renderPage(t, loadForm(t), render.RenderOptions{}, WithTheme(cfg), WithTitle("File a bug"))

	for _, want := range []string{
		`<body data-theme="acme" data-theme-variant="dark">`,
		"--brand: #123456;",
		`<link rel="stylesheet" href="/themes/acme/issueform.css">`,
		"<title>File a bug</title>",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected page to contain %q\n%s", want, html)
		}
	}
	if strings.Contains(html, "ignored") {
		t.Fatalf("non custom-property keys must be dropped")
	}
}

func TestRenderRejectsEmptyForm(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if _, err := r.Render(context.Background(), model.FormModel{}, render.RenderOptions{}); err == nil {
		t.Fatal("expected error for form without fields")
	}
	if r.Name() != "page" || !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("unexpected renderer identity %q %q", r.Name(), r.ContentType())
	}
}

func TestCSSVarsStyleStripsInjection(t *testing.T) {
	got := cssVarsStyle(map[string]string{"--x": "red;}</style><script>"})
	if strings.ContainsAny(got[len(":root {\n"):len(got)-1], "<>{}") {
		t.Fatalf("unexpected characters survived: %q", got)
	}
}
