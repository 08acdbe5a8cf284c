// Package template defines the template engine seam used by the page
// renderer. The gotemplate sub-package provides the pongo2-backed engine.
package template
