package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// OllamaOptions scripts a fake Ollama server.
type OllamaOptions struct {
	// Completion is returned as the first choice text.
	Completion string
	// FailModel answers completions for this model with a 404 API error.
	FailModel string
}

// OllamaServer fakes the OpenAI compatible endpoints of Ollama.
type OllamaServer struct {
	*httptest.Server

	mu      sync.Mutex
	prompts []string
	models  []string
}

// NewOllamaServer starts a fake closed at test cleanup.
func NewOllamaServer(t *testing.T, opts OllamaOptions) *OllamaServer {
	t.Helper()

	s := &OllamaServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"llama3.2","object":"model","created":1,"owned_by":"library"}]}`))
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.prompts = append(s.prompts, body.Prompt)
		s.models = append(s.models, body.Model)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if opts.FailModel != "" && body.Model == opts.FailModel {
			w.WriteHeader(http.StatusNotFound)
			payload, _ := json.Marshal(map[string]any{"error": map[string]string{
				"message": `model "` + body.Model + `" not found, try pulling it first`,
				"type":    "api_error",
			}})
			_, _ = w.Write(payload)
			return
		}
		payload, _ := json.Marshal(map[string]any{
			"id":      "cmpl-1",
			"object":  "text_completion",
			"created": 1,
			"model":   body.Model,
			"choices": []map[string]any{{"text": opts.Completion, "index": 0, "finish_reason": "stop"}},
		})
		_, _ = w.Write(payload)
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Prompts lists the prompts received so far.
func (s *OllamaServer) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Models lists the model names requested so far.
func (s *OllamaServer) Models() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.models...)
}

// JiraRequest is a request observed by JiraServer.
type JiraRequest struct {
	Method   string
	Path     string
	Username string
	Password string
	Body     []byte
}

// JiraServer answers every request with a fixed status and body.
type JiraServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []JiraRequest
}

// NewJiraServer starts a fake closed at test cleanup.
func NewJiraServer(t *testing.T, status int, body string) *JiraServer {
	t.Helper()

	s := &JiraServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		user, pass, _ := r.BasicAuth()
		s.mu.Lock()
		s.requests = append(s.requests, JiraRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			Username: user,
			Password: pass,
			Body:     raw,
		})
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

// Requests lists the requests received so far.
func (s *JiraServer) Requests() []JiraRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]JiraRequest(nil), s.requests...)
}
