// Package secrets abstracts how the destination password is obtained.
//
// The pipeline itself only ever sees a Provider; the concrete backing store
// (a mounted secret file today, a vault service or injected environment value
// tomorrow) stays swappable without touching pipeline logic.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Provider yields a single secret value.
type Provider interface {
	Secret() (string, error)
}

// FileProvider reads the entire file at Path and returns its contents with
// surrounding whitespace trimmed. This matches the layout of Docker/Kubernetes
// mounted secrets, which commonly carry a trailing newline.
type FileProvider struct {
	Path string
}

// Secret implements Provider. A missing or unreadable file is an error; the
// caller treats it as fatal configuration before any pipeline stage runs.
func (p FileProvider) Secret() (string, error) {
	if strings.TrimSpace(p.Path) == "" {
		return "", fmt.Errorf("secrets: file path must not be empty")
	}
	b, err := os.ReadFile(p.Path)
	if err != nil {
		return "", fmt.Errorf("secrets: read %s: %w", p.Path, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// StaticProvider returns a fixed value. It backs environment-injected
// passwords and keeps tests free of filesystem fixtures.
type StaticProvider struct {
	Value string
}

func (p StaticProvider) Secret() (string, error) { return p.Value, nil }
