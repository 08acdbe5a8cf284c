package submission

import (
	"net/url"
	"strings"
)

// JiraURLField names the form field carrying the tracker base URL used to
// build issue links.
const JiraURLField = "jira_url"

// Fields is the flat snapshot of a form taken at submission time. Keys are
// control names, values are the raw control values.
type Fields map[string]string

// FromValues flattens decoded form values. When a name repeats, the last value
// wins, matching how browsers build an object from FormData entries.
func FromValues(values url.Values) Fields {
	out := make(Fields, len(values))
	for name, entries := range values {
		if strings.TrimSpace(name) == "" || len(entries) == 0 {
			continue
		}
		out[name] = entries[len(entries)-1]
	}
	return out
}

// Clone returns an independent copy so a submission never observes later
// mutations of the caller's map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for name, value := range f {
		out[name] = value
	}
	return out
}

// Get returns the value stored under name, or "" when absent.
func (f Fields) Get(name string) string {
	if f == nil {
		return ""
	}
	return f[name]
}
