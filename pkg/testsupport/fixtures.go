package testsupport

import (
	"context"
	"testing"

	"github.com/goliatone/go-issueform/pkg/contract"
	pkgmodel "github.com/goliatone/go-issueform/pkg/model"
	"github.com/goliatone/go-issueform/pkg/submission"
)

// MustLoadFormModel loads the embedded issue contract.
func MustLoadFormModel(t *testing.T) pkgmodel.FormModel {
	t.Helper()

	form, err := contract.Load(context.Background())
	if err != nil {
		t.Fatalf("load form model: %v", err)
	}
	return form
}

// IssueFields returns a complete, valid submission. Callers may mutate the
// returned map.
func IssueFields(jiraURL string) submission.Fields {
	return submission.Fields{
		"jira_url":      jiraURL,
		"jira_email":    "dev@example.com",
		"api_token":     "token",
		"project_key":   "PROJ",
		"issue_summary": "Login loops",
		"issue_type":    "Bug",
		"ollama_prompt": "Users are redirected back to login",
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
