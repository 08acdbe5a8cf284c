package submission

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Fixed user-facing text.
const (
	ProcessingMessage    = "Processing... Please wait."
	IdleLabel            = "Generate & Create Issue"
	SubmittingLabel      = "Creating..."
	networkErrorPrefix   = "An error occurred while contacting the backend: "
	issueLinkPathSegment = "/browse/"
)

var prettyOptions = &pretty.Options{Width: -1, Indent: "  "}

// Result is the tagged outcome of one submission: Success, Failure or
// NetworkError.
type Result interface {
	// Message renders the result as the multi-line text shown to the user.
	Message() string
	isResult()
}

// Success is produced for 2xx backend responses.
type Success struct {
	StatusCode int
	Response   json.RawMessage
	// IssueLink is empty when the response carries no issue key or the form
	// had no tracker base URL.
	IssueLink string
}

// Failure is produced for non-2xx backend responses. Body is rendered
// verbatim.
type Failure struct {
	HTTPStatus int
	StatusText string
	Body       json.RawMessage
}

// NetworkError covers transport failures and unparseable responses.
type NetworkError struct {
	Err error
}

func (Success) isResult()      {}
func (Failure) isResult()      {}
func (NetworkError) isResult() {}

func (s Success) Message() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Success!\nStatus Code: %d\nResponse:\n%s", s.StatusCode, PrettyJSON(s.Response))
	if s.IssueLink != "" {
		b.WriteString("\n\nIssue Link: ")
		b.WriteString(s.IssueLink)
	}
	return b.String()
}

func (f Failure) Message() string {
	return fmt.Sprintf("Error: %d %s\n%s", f.HTTPStatus, f.StatusText, PrettyJSON(f.Body))
}

func (n NetworkError) Message() string {
	if n.Err == nil {
		return networkErrorPrefix + "unknown error"
	}
	return networkErrorPrefix + n.Err.Error()
}

func (n NetworkError) Error() string { return n.Message() }

func (n NetworkError) Unwrap() error { return n.Err }

// PrettyJSON renders raw JSON with two-space indentation, keeping the source
// key order. Empty input renders as null.
func PrettyJSON(raw json.RawMessage) string {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return "null"
	}
	return strings.TrimRight(string(pretty.PrettyOptions(raw, prettyOptions)), "\n")
}

// IssueLink joins the tracker base URL and an issue key. A single trailing
// slash on base is dropped. An empty base yields no link.
func IssueLink(base, key string) string {
	if base == "" || key == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + issueLinkPathSegment + key
}

func newSuccess(doc gjson.Result, fields Fields) Success {
	response := doc.Get("response")
	out := Success{
		StatusCode: int(doc.Get("status_code").Int()),
		Response:   rawOrNull(response),
	}
	if response.IsObject() {
		if key := response.Get("key"); truthy(key) {
			out.IssueLink = IssueLink(fields.Get(JiraURLField), key.String())
		}
	}
	return out
}

func rawOrNull(value gjson.Result) json.RawMessage {
	if !value.Exists() {
		return json.RawMessage("null")
	}
	return json.RawMessage(value.Raw)
}

func truthy(value gjson.Result) bool {
	switch value.Type {
	case gjson.String:
		return value.Str != ""
	case gjson.Number:
		return value.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}
