package model

import "strings"

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
)

// Widget hints understood by the renderers.
const (
	WidgetInput    = "input"
	WidgetTextArea = "textarea"
	WidgetSelect   = "select"
)

// Field models an individual input inside the issue form. Struct fields are
// annotated so renderers can serialise them directly when needed.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Widget      string            `json:"widget,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     string            `json:"default,omitempty"`
	Enum        []string          `json:"enum,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Secret reports whether the field value should be masked when collected.
func (f Field) Secret() bool {
	return f.Format == "password" || strings.EqualFold(f.Metadata["secret"], "true")
}

// InputType maps the field format onto an HTML input type.
func (f Field) InputType() string {
	switch f.Format {
	case "password":
		return "password"
	case "uri", "url":
		return "url"
	case "email":
		return "email"
	}
	switch f.Type {
	case FieldTypeInteger, FieldTypeNumber:
		return "number"
	case FieldTypeBoolean:
		return "checkbox"
	}
	return "text"
}

// DisplayLabel falls back to the field name when no label is declared.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	OperationID string            `json:"operationId"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Summary     string            `json:"summary,omitempty"`
	Description string            `json:"description,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// FieldByName returns the field declared with name.
func (m FormModel) FieldByName(name string) (Field, bool) {
	for _, field := range m.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// RequiredNames lists required field names in declaration order.
func (m FormModel) RequiredNames() []string {
	var out []string
	for _, field := range m.Fields {
		if field.Required {
			out = append(out, field.Name)
		}
	}
	return out
}
