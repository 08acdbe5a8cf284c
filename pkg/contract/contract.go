// Package contract loads the OpenAPI document describing the issue endpoint
// and turns its request schema into the form model the renderers and the
// server share.
package contract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-issueform/pkg/model"
)

// OperationID identifies the issue creation operation in the document.
const OperationID = "createJiraIssue"

// Extension keys read from schema properties.
const (
	extensionWidget      = "x-widget"
	extensionPlaceholder = "x-placeholder"
)

//go:embed openapi.yaml
var embeddedDocument []byte

var (
	// ErrOperationNotFound is returned when the document lacks the requested
	// operation.
	ErrOperationNotFound = errors.New("contract: operation not found")
	// ErrNoRequestSchema is returned when the operation declares no JSON body.
	ErrNoRequestSchema = errors.New("contract: operation has no JSON request schema")
)

// Document returns the embedded OpenAPI document bytes.
func Document() []byte {
	out := make([]byte, len(embeddedDocument))
	copy(out, embeddedDocument)
	return out
}

// Load parses the embedded document and builds the form model for
// OperationID.
func Load(ctx context.Context) (model.FormModel, error) {
	return LoadFromData(ctx, embeddedDocument, OperationID)
}

// LoadFromData parses an OpenAPI document and builds the form model for the
// named operation.
func LoadFromData(ctx context.Context, raw []byte, operationID string) (model.FormModel, error) {
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if len(raw) == 0 {
		return model.FormModel{}, errors.New("contract: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return model.FormModel{}, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return model.FormModel{}, fmt.Errorf("contract: validate: %w", err)
	}

	method, path, op := findOperation(doc, operationID)
	if op == nil {
		return model.FormModel{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	schema := requestSchema(op)
	if schema == nil {
		return model.FormModel{}, fmt.Errorf("%w: %q", ErrNoRequestSchema, operationID)
	}

	return model.FormModel{
		OperationID: operationID,
		Endpoint:    path,
		Method:      method,
		Summary:     op.Summary,
		Description: op.Description,
		Fields:      buildFields(schema),
	}, nil
}

func findOperation(doc *openapi3.T, operationID string) (string, string, *openapi3.Operation) {
	if doc.Paths == nil {
		return "", "", nil
	}
	paths := make([]string, 0, doc.Paths.Len())
	for path := range doc.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return strings.ToUpper(method), path, op
			}
		}
	}
	return "", "", nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt := op.RequestBody.Value.Content.Get("application/json")
	if mt == nil || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}

// buildFields orders fields by the schema's required list, then the
// remaining properties alphabetically.
func buildFields(schema *openapi3.Schema) []model.Field {
	required := make(map[string]struct{}, len(schema.Required))
	order := make([]string, 0, len(schema.Properties))
	for _, name := range schema.Required {
		if _, ok := schema.Properties[name]; !ok {
			continue
		}
		if _, dup := required[name]; dup {
			continue
		}
		required[name] = struct{}{}
		order = append(order, name)
	}

	var optional []string
	for name := range schema.Properties {
		if _, ok := required[name]; !ok {
			optional = append(optional, name)
		}
	}
	sort.Strings(optional)
	order = append(order, optional...)

	fields := make([]model.Field, 0, len(order))
	for _, name := range order {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		_, isRequired := required[name]
		fields = append(fields, convertField(name, ref.Value, isRequired))
	}
	return fields
}

func convertField(name string, prop *openapi3.Schema, required bool) model.Field {
	field := model.Field{
		Name:        name,
		Type:        fieldType(prop),
		Format:      prop.Format,
		Required:    required,
		Label:       strings.TrimSpace(prop.Title),
		Description: strings.TrimSpace(prop.Description),
		Placeholder: stringExtension(prop.Extensions, extensionPlaceholder),
		Widget:      stringExtension(prop.Extensions, extensionWidget),
	}
	if prop.Default != nil {
		field.Default = fmt.Sprint(prop.Default)
	}
	for _, value := range prop.Enum {
		field.Enum = append(field.Enum, fmt.Sprint(value))
	}
	if field.Widget == "" {
		if len(field.Enum) > 0 {
			field.Widget = model.WidgetSelect
		} else {
			field.Widget = model.WidgetInput
		}
	}
	return field
}

func fieldType(prop *openapi3.Schema) model.FieldType {
	if prop.Type == nil {
		return model.FieldTypeString
	}
	switch {
	case prop.Type.Is(openapi3.TypeInteger):
		return model.FieldTypeInteger
	case prop.Type.Is(openapi3.TypeNumber):
		return model.FieldTypeNumber
	case prop.Type.Is(openapi3.TypeBoolean):
		return model.FieldTypeBoolean
	default:
		return model.FieldTypeString
	}
}

func stringExtension(extensions map[string]any, key string) string {
	if len(extensions) == 0 {
		return ""
	}
	value, ok := extensions[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}
