package submission

import (
	"fmt"
	"io"
	"sync"
)

// TextDisplay is an in-memory Display that keeps the latest text.
type TextDisplay struct {
	mu   sync.Mutex
	text string
}

func (d *TextDisplay) SetText(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

// Text returns the current display content.
func (d *TextDisplay) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Button is an in-memory Control.
type Button struct {
	mu      sync.Mutex
	enabled bool
	label   string
}

func (b *Button) SetEnabled(enabled bool) {
	b.mu.Lock()
	b.enabled = enabled
	b.mu.Unlock()
}

func (b *Button) SetLabel(label string) {
	b.mu.Lock()
	b.label = label
	b.mu.Unlock()
}

// Enabled reports whether the button accepts clicks.
func (b *Button) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// Label returns the current button caption.
func (b *Button) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}

// WriterDisplay prints every status update to W, one block per update.
type WriterDisplay struct {
	W io.Writer
}

func (d WriterDisplay) SetText(text string) {
	if d.W == nil {
		return
	}
	fmt.Fprintln(d.W, text)
}
