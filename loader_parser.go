package issueform

import (
	"context"

	"github.com/goliatone/go-issueform/pkg/contract"
	"github.com/goliatone/go-issueform/pkg/model"
)

// FormModel aliases model.FormModel for callers that only need the facade.
type FormModel = model.FormModel

// LoadForm parses the embedded issue contract into a form model.
func LoadForm(ctx context.Context) (FormModel, error) {
	return contract.Load(ctx)
}

// LoadFormFromData parses a caller supplied OpenAPI document and builds the
// form for operationID.
func LoadFormFromData(ctx context.Context, raw []byte, operationID string) (FormModel, error) {
	return contract.LoadFromData(ctx, raw, operationID)
}
