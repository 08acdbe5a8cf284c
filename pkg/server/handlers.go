package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/goliatone/go-issueform/internal/generator"
	"github.com/goliatone/go-issueform/internal/jira"
	"github.com/goliatone/go-issueform/pkg/render"
)

// OllamaHostField names the configured host in missing field reports.
const OllamaHostField = "OLLAMA_HOST (in .env)"

const maxPayloadBytes = 1 << 20

// Payload fields read by the create handler.
const (
	fieldJiraURL      = "jira_url"
	fieldJiraEmail    = "jira_email"
	fieldAPIToken     = "api_token"
	fieldProjectKey   = "project_key"
	fieldIssueSummary = "issue_summary"
	fieldIssueType    = "issue_type"
	fieldPrompt       = "ollama_prompt"
)

// PayloadFields lists the payload entries the create handler reads. A form
// contract served by this package must declare each of them as required.
var PayloadFields = []string{
	fieldJiraURL,
	fieldJiraEmail,
	fieldAPIToken,
	fieldProjectKey,
	fieldIssueSummary,
	fieldIssueType,
	fieldPrompt,
}

type errorBody struct {
	Error string `json:"error"`
}

type relayBody struct {
	StatusCode int             `json:"status_code"`
	Response   json.RawMessage `json:"response"`
}

type undecodedBody struct {
	Error string `json:"error"`
	Text  string `json:"text"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != PathIndex {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	out, err := s.page.Render(r.Context(), s.form, render.RenderOptions{})
	if err != nil {
		s.logger.Error("render form page", zap.Error(err))
		http.Error(w, "failed to render form", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.page.ContentType())
	_, _ = w.Write(out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil || !gjson.ValidBytes(raw) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON payload"})
		return
	}
	payload := gjson.ParseBytes(raw)
	if !payload.IsObject() || len(payload.Map()) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON payload"})
		return
	}

	values, missing := s.requiredValues(payload)
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error: "Missing required fields: " + strings.Join(missing, ","),
		})
		return
	}

	ctx := r.Context()
	site := values[fieldJiraURL]
	endpoint := jira.IssueEndpoint(site)
	host := s.generator.Host()

	s.logger.Info("Connecting to Ollama", zap.String("host", host))
	if err := s.generator.Ping(ctx); err != nil {
		s.logger.Error("Failed to connect to Ollama", zap.String("host", host), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: fmt.Sprintf(
			"Could not connect to Ollama specified in OLLAMA_HOST (%s). Please ensure it is running and accessible. Error: %v",
			host, err,
		)})
		return
	}

	s.logger.Info("Generating description", zap.String("prompt", truncate(values[fieldPrompt], 100)))
	description, err := s.generator.Generate(ctx, values[fieldPrompt])
	if err != nil {
		var apiErr *generator.APIError
		if errors.As(err, &apiErr) {
			s.logger.Error("Ollama API error during generation", zap.String("host", host), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorBody{
				Error: fmt.Sprintf("Ollama API error: %s (using %s)", apiErr.Message, host),
			})
			return
		}
		s.unexpected(w, err)
		return
	}

	s.logger.Info("Sending request to Jira API", zap.String("endpoint", endpoint))
	resp, err := s.issues.CreateIssue(ctx, site,
		jira.Credentials{Email: values[fieldJiraEmail], APIToken: values[fieldAPIToken]},
		jira.IssueRequest{
			ProjectKey:  values[fieldProjectKey],
			Summary:     values[fieldIssueSummary],
			Description: description,
			IssueType:   values[fieldIssueType],
		},
	)
	if err != nil {
		var transportErr *jira.TransportError
		if errors.As(err, &transportErr) {
			s.logger.Error("Jira API request failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: fmt.Sprintf(
				"Jira API request failed: Could not connect to %s. Details: %v",
				endpoint, transportErr.Err,
			)})
			return
		}
		s.unexpected(w, err)
		return
	}

	s.logger.Info("Jira API response", zap.Int("status", resp.StatusCode))
	writeJSON(w, resp.StatusCode, relayBody{
		StatusCode: resp.StatusCode,
		Response:   s.relayedResponse(resp),
	})
}

// requiredValues reads every required field as a string. Missing or falsy
// entries are reported in declaration order with the configured Ollama host
// listed ahead of the prompt.
func (s *Server) requiredValues(payload gjson.Result) (map[string]string, []string) {
	values := make(map[string]string)
	var missing []string

	hostChecked := false
	checkHost := func() {
		hostChecked = true
		if s.generator == nil {
			missing = append(missing, OllamaHostField)
		}
	}

	for _, name := range s.form.RequiredNames() {
		if name == fieldPrompt && !hostChecked {
			checkHost()
		}
		value := payload.Get(gjson.Escape(name))
		if !truthy(value) {
			missing = append(missing, name)
			continue
		}
		values[name] = value.String()
	}
	if !hostChecked {
		checkHost()
	}
	return values, missing
}

func (s *Server) relayedResponse(resp *jira.Response) json.RawMessage {
	body := bytes.TrimSpace(resp.Body)
	if !gjson.ValidBytes(body) || len(body) == 0 {
		s.logger.Error("Failed to decode Jira API JSON response",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", resp.Body),
		)
		encoded, _ := marshalJSON(undecodedBody{Error: "Failed to decode Jira response", Text: string(resp.Body)})
		return encoded
	}

	if resp.StatusCode >= http.StatusBadRequest {
		doc := gjson.ParseBytes(body)
		if msgs := doc.Get("errorMessages"); msgs.Exists() {
			s.logger.Error("Jira API Error", zap.String("errorMessages", msgs.Raw))
		}
		if fieldErrs := doc.Get("errors"); fieldErrs.Exists() {
			s.logger.Error("Jira API Field Errors", zap.String("errors", fieldErrs.Raw))
		}
	}
	return json.RawMessage(body)
}

func (s *Server) unexpected(w http.ResponseWriter, err error) {
	s.logger.Error("An unexpected error occurred", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error: fmt.Sprintf("An unexpected server error occurred: %v", err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := marshalJSON(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// truthy treats null, false, zero, empty strings and empty containers as
// absent.
func truthy(value gjson.Result) bool {
	switch value.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.Number:
		return value.Num != 0
	case gjson.String:
		return value.Str != ""
	case gjson.JSON:
		if value.IsArray() {
			return len(value.Array()) > 0
		}
		return len(value.Map()) > 0
	}
	return value.Exists()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
