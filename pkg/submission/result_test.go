package submission

import (
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIssueLink(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{name: "trailing slash", base: "https://jira.example.com/", key: "PROJ-123", want: "https://jira.example.com/browse/PROJ-123"},
		{name: "no trailing slash", base: "https://jira.example.com", key: "PROJ-1", want: "https://jira.example.com/browse/PROJ-1"},
		{name: "only one slash dropped", base: "https://jira.example.com//", key: "A-1", want: "https://jira.example.com//browse/A-1"},
		{name: "missing base", base: "", key: "A-1", want: ""},
		{name: "missing key", base: "https://jira.example.com", key: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IssueLink(tt.base, tt.key); got != tt.want {
				t.Fatalf("IssueLink(%q, %q) = %q, want %q", tt.base, tt.key, got, tt.want)
			}
		})
	}
}

func TestPrettyJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "empty", raw: "", want: "null"},
		{name: "scalar", raw: `"ok"`, want: `"ok"`},
		{name: "empty object", raw: `{}`, want: `{}`},
		{name: "keeps key order", raw: `{"b":1,"a":[1,2]}`, want: "{\n  \"b\": 1,\n  \"a\": [\n    1,\n    2\n  ]\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, PrettyJSON(json.RawMessage(tt.raw))); diff != "" {
				t.Fatalf("PrettyJSON mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNetworkErrorUnwraps(t *testing.T) {
	sentinel := errors.New("dial refused")
	err := error(NetworkError{Err: sentinel})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected NetworkError to unwrap to its cause")
	}
	if got := (NetworkError{}).Message(); got != "An error occurred while contacting the backend: unknown error" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestSuccessNumericKey(t *testing.T) {
	result := parseSuccessFixture(`{"status_code":201,"response":{"key":42}}`, Fields{"jira_url": "https://jira.example.com"})
	if result.IssueLink != "https://jira.example.com/browse/42" {
		t.Fatalf("issue link = %q", result.IssueLink)
	}
	if result.StatusCode != 201 {
		t.Fatalf("status code = %d", result.StatusCode)
	}
}

func TestSuccessFalsyKeyOmitsLink(t *testing.T) {
	for _, raw := range []string{
		`{"status_code":201,"response":{"key":""}}`,
		`{"status_code":201,"response":{"key":null}}`,
		`{"status_code":201,"response":{"key":0}}`,
		`{"status_code":201,"response":"PROJ-1"}`,
	} {
		if link := parseSuccessFixture(raw, Fields{"jira_url": "https://jira.example.com"}).IssueLink; link != "" {
			t.Fatalf("%s: expected no link, got %q", raw, link)
		}
	}
}

func TestSuccessMissingResponseRendersNull(t *testing.T) {
	result := parseSuccessFixture(`{"status_code":204}`, nil)
	want := "Success!\nStatus Code: 204\nResponse:\nnull"
	if diff := cmp.Diff(want, result.Message()); diff != "" {
		t.Fatalf("message mismatch (-want +got):\n%s", diff)
	}
}

func TestFromValuesKeepsLastEntry(t *testing.T) {
	values := url.Values{
		"jira_url":   {"https://a.example.com", "https://b.example.com"},
		"issue_type": {"Bug"},
		"":           {"ignored"},
		"empty":      {},
	}
	want := Fields{"jira_url": "https://b.example.com", "issue_type": "Bug"}
	if diff := cmp.Diff(want, FromValues(values)); diff != "" {
		t.Fatalf("FromValues mismatch (-want +got):\n%s", diff)
	}
}
