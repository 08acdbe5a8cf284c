// Package model defines the typed form model consumed by renderers. The
// contract package builds it from the OpenAPI request schema; format and the
// `x-widget`/`x-placeholder` extensions surface as Field.Format, Field.Widget
// and Field.Placeholder so renderers never parse raw schema payloads.
package model
