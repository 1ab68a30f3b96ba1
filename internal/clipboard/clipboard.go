// Package clipboard reads and writes the system clipboard, falling back to
// an in-process buffer where no clipboard utility is available.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Clipboard is a text clipboard
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// New returns the system clipboard when supported, otherwise a Memory one
func New() Clipboard {
	if clipboard.Unsupported {
		return &Memory{}
	}
	return System{}
}

// System uses the platform clipboard utilities
type System struct{}

func (System) Read() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}

func (System) Write(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// Memory keeps the clipboard inside the process
type Memory struct {
	text string
}

func (m *Memory) Read() (string, error) { return m.text, nil }

func (m *Memory) Write(text string) error {
	m.text = text
	return nil
}
