package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-issueform/internal/generator"
	"github.com/goliatone/go-issueform/internal/jira"
	"github.com/goliatone/go-issueform/pkg/model"
	"github.com/goliatone/go-issueform/pkg/testsupport"
)

const validPayload = `{
	"jira_url": "https://acme.atlassian.net",
	"jira_email": "dev@example.com",
	"api_token": "token",
	"project_key": "PROJ",
	"issue_summary": "Login loops",
	"issue_type": "Bug",
	"ollama_prompt": "Users are redirected back to login"
}`

type stubGenerator struct {
	host        string
	pingErr     error
	generateErr error
	text        string
	prompts     []string
}

func (g *stubGenerator) Host() string { return g.host }

func (g *stubGenerator) Ping(context.Context) error { return g.pingErr }

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.generateErr != nil {
		return "", g.generateErr
	}
	return g.text, nil
}

type stubIssues struct {
	resp  *jira.Response
	err   error
	site  string
	creds jira.Credentials
	req   jira.IssueRequest
	calls int
}

func (s *stubIssues) CreateIssue(_ context.Context, site string, creds jira.Credentials, req jira.IssueRequest) (*jira.Response, error) {
	s.calls++
	s.site, s.creds, s.req = site, creds, req
	return s.resp, s.err
}

func newTestServer(t *testing.T, options ...Option) (http.Handler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	options = append([]Option{WithLogger(zap.New(core))}, options...)
	srv, err := New(testsupport.MustLoadFormModel(t), options...)
	require.NoError(t, err)
	return srv.Handler(), logs
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, PathCreateIssue, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresFields(t *testing.T) {
	_, err := New(model.FormModel{})
	assert.Error(t, err)
}

func TestIndexRendersForm(t *testing.T) {
	h, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `id="jira-form"`)
	assert.Contains(t, body, `action="/api/create_jira"`)
	assert.Contains(t, body, `id="submit-btn"`)
	assert.Contains(t, body, `id="result-output"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndRuntime(t *testing.T) {
	assets := fstest.MapFS{"issueform.js": &fstest.MapFile{Data: []byte("// runtime")}}
	h, _ := newTestServer(t, WithRuntimeFS(assets))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathHealth, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runtime/issueform.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "// runtime", rec.Body.String())
}

func TestCreateIssue_MethodNotAllowed(t *testing.T) {
	h, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathCreateIssue, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestCreateIssue_InvalidPayload(t *testing.T) {
	h, _ := newTestServer(t, WithGenerator(&stubGenerator{host: "http://ollama"}))

	for _, body := range []string{"", "not json", "{}", "[1,2]", "null"} {
		t.Run(body, func(t *testing.T) {
			rec := post(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, `{"error":"Invalid JSON payload"}`, rec.Body.String())
		})
	}
}

func TestCreateIssue_MissingFields(t *testing.T) {
	t.Run("without ollama host", func(t *testing.T) {
		h, _ := newTestServer(t)
		rec := post(t, h, `{"jira_url":"https://acme.atlassian.net","issue_type":""}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t,
			`{"error":"Missing required fields: jira_email,api_token,project_key,issue_summary,issue_type,OLLAMA_HOST (in .env),ollama_prompt"}`,
			rec.Body.String())
	})

	t.Run("falsy values", func(t *testing.T) {
		issues := &stubIssues{}
		h, _ := newTestServer(t, WithGenerator(&stubGenerator{host: "http://ollama"}), WithIssueCreator(issues))
		body := strings.Replace(validPayload, `"Login loops"`, `null`, 1)
		body = strings.Replace(body, `"PROJ"`, `0`, 1)
		rec := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, `{"error":"Missing required fields: project_key,issue_summary"}`, rec.Body.String())
		assert.Zero(t, issues.calls)
	})
}

func TestCreateIssue_OllamaUnreachable(t *testing.T) {
	gen := &stubGenerator{host: "http://ollama:11434", pingErr: errors.New("connection refused")}
	h, logs := newTestServer(t, WithGenerator(gen))

	rec := post(t, h, validPayload)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t,
		`{"error":"Could not connect to Ollama specified in OLLAMA_HOST (http://ollama:11434). Please ensure it is running and accessible. Error: connection refused"}`,
		rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("Failed to connect to Ollama").Len())
	assert.Empty(t, gen.prompts)
}

func TestCreateIssue_GeneratorErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "api error",
			err:  &generator.APIError{StatusCode: 404, Message: `model "llama3.2" not found`},
			want: `{"error":"Ollama API error: model "llama3.2" not found (using http://ollama:11434)"}`,
		},
		{
			name: "unexpected",
			err:  generator.ErrEmptyCompletion,
			want: `{"error":"An unexpected server error occurred: generator: completion returned no choices"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issues := &stubIssues{}
			gen := &stubGenerator{host: "http://ollama:11434", generateErr: tc.err}
			h, _ := newTestServer(t, WithGenerator(gen), WithIssueCreator(issues))

			rec := post(t, h, validPayload)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, jsonEscapeQuotes(tc.want), rec.Body.String())
			assert.Zero(t, issues.calls)
		})
	}
}

// jsonEscapeQuotes turns the readable expectation into valid JSON by
// escaping quotes inside the error value.
func jsonEscapeQuotes(s string) string {
	const prefix = `{"error":"`
	const suffix = `"}`
	inner := strings.TrimSuffix(strings.TrimPrefix(s, prefix), suffix)
	return prefix + strings.ReplaceAll(inner, `"`, `\"`) + suffix
}

func TestCreateIssue_JiraTransportError(t *testing.T) {
	issues := &stubIssues{err: &jira.TransportError{
		Endpoint: "https://acme.atlassian.net/rest/api/2/issue/",
		Err:      errors.New("dial tcp: no such host"),
	}}
	h, _ := newTestServer(t, WithGenerator(&stubGenerator{host: "http://ollama", text: "desc"}), WithIssueCreator(issues))

	rec := post(t, h, validPayload)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t,
		`{"error":"Jira API request failed: Could not connect to https://acme.atlassian.net/rest/api/2/issue/. Details: dial tcp: no such host"}`,
		rec.Body.String())
}

func TestCreateIssue_RelaysJira(t *testing.T) {
	tests := []struct {
		name       string
		resp       *jira.Response
		wantStatus int
		wantBody   string
		wantLogs   []string
	}{
		{
			name:       "created",
			resp:       &jira.Response{StatusCode: http.StatusCreated, Body: []byte(`{"id":"10001","key":"PROJ-7"}`)},
			wantStatus: http.StatusCreated,
			wantBody:   `{"status_code":201,"response":{"id":"10001","key":"PROJ-7"}}`,
		},
		{
			name:       "rejected",
			resp:       &jira.Response{StatusCode: http.StatusBadRequest, Body: []byte(`{"errorMessages":[],"errors":{"project":"valid project is required"}}`)},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"status_code":400,"response":{"errorMessages":[],"errors":{"project":"valid project is required"}}}`,
			wantLogs:   []string{"Jira API Error", "Jira API Field Errors"},
		},
		{
			name:       "not json",
			resp:       &jira.Response{StatusCode: http.StatusBadGateway, Body: []byte(`<html>bad gateway</html>`)},
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"status_code":502,"response":{"error":"Failed to decode Jira response","text":"<html>bad gateway</html>"}}`,
			wantLogs:   []string{"Failed to decode Jira API JSON response"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issues := &stubIssues{resp: tc.resp}
			gen := &stubGenerator{host: "http://ollama", text: "Generated description"}
			h, logs := newTestServer(t, WithGenerator(gen), WithIssueCreator(issues))

			rec := post(t, h, validPayload)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantBody, rec.Body.String())
			for _, msg := range tc.wantLogs {
				assert.Equal(t, 1, logs.FilterMessage(msg).Len(), msg)
			}

			assert.Equal(t, []string{"Users are redirected back to login"}, gen.prompts)
			assert.Equal(t, "https://acme.atlassian.net", issues.site)
			assert.Equal(t, jira.Credentials{Email: "dev@example.com", APIToken: "token"}, issues.creds)
			assert.Equal(t, jira.IssueRequest{
				ProjectKey:  "PROJ",
				Summary:     "Login loops",
				Description: "Generated description",
				IssueType:   "Bug",
			}, issues.req)
		})
	}
}

func TestCreateIssue_EndToEnd(t *testing.T) {
	ollama := testsupport.NewOllamaServer(t, testsupport.OllamaOptions{Completion: "Steps to reproduce"})
	jiraSrv := testsupport.NewJiraServer(t, http.StatusCreated, `{"id":"10001","key":"PROJ-7"}`)

	h, _ := newTestServer(t, WithOllama(strings.TrimPrefix(ollama.URL, "http://"), "llama3.2"))

	payload, err := json.Marshal(testsupport.IssueFields(jiraSrv.URL))
	require.NoError(t, err)
	rec := post(t, h, string(payload))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, `{"status_code":201,"response":{"id":"10001","key":"PROJ-7"}}`, rec.Body.String())
	assert.Equal(t, []string{"Users are redirected back to login"}, ollama.Prompts())
	assert.Equal(t, []string{"llama3.2"}, ollama.Models())

	reqs := jiraSrv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/rest/api/2/issue/", reqs[0].Path)
	assert.Equal(t, "dev@example.com", reqs[0].Username)
	assert.Contains(t, string(reqs[0].Body), `"description":"Steps to reproduce"`)
	assert.Contains(t, string(reqs[0].Body), `"summary":"Login loops"`)
}
