package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model.
type RenderOptions struct {
	// Values pre-populates controls keyed by field name. Values override the
	// field defaults declared in the form model.
	Values map[string]string
}

// ValueFor resolves the prefill for a field, falling back to its default.
func (o RenderOptions) ValueFor(name, fallback string) string {
	if value, ok := o.Values[name]; ok {
		return value
	}
	return fallback
}
