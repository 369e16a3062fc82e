// Package clipboard copies conflict text to the system clipboard.
package clipboard

import (
	"errors"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/fwojciec/revise"
)

// Compile-time interface verification.
var (
	_ revise.Clipboard = (*System)(nil)
	_ revise.Clipboard = (*Memory)(nil)
)

// ErrUnsupported is returned when no system clipboard utility is available.
var ErrUnsupported = errors.New("clipboard: no clipboard utility available")

// System implements Clipboard with the platform clipboard (pbcopy, xclip,
// xsel, wl-copy or the Windows API).
type System struct{}

// NewSystem returns a new System clipboard.
func NewSystem() *System {
	return &System{}
}

// Copy writes content to the system clipboard.
func (s *System) Copy(content string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	return clipboard.WriteAll(content)
}

// Read returns the current system clipboard content.
func (s *System) Read() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}
	return clipboard.ReadAll()
}

// Memory is an in-process clipboard for sessions without a system clipboard.
type Memory struct {
	mu      sync.Mutex
	content string
}

// NewMemory returns an empty in-process clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// Copy stores content.
func (m *Memory) Copy(content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content = content
	return nil
}

// Content returns the last copied text.
func (m *Memory) Content() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content
}

// Default returns the system clipboard when one is available and an
// in-process clipboard otherwise.
func Default() revise.Clipboard {
	if clipboard.Unsupported {
		return NewMemory()
	}
	return NewSystem()
}
