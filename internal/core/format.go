package core

import (
	"fmt"
	"sync"
)

// Format is the interface implemented by all manifest format codecs.
type Format interface {
	// Ecosystem returns the PURL type for this format (e.g., "cargo").
	Ecosystem() string

	// Filenames returns the manifest filenames this format recognizes.
	Filenames() []string

	// Parse decodes manifest source text into the shared model.
	Parse(data []byte) (*Manifest, error)

	// Encode renders the manifest back to canonical source text.
	// Encoding then re-parsing yields an identical record.
	Encode(m *Manifest) ([]byte, error)
}

// FormatFactory creates a format codec instance.
type FormatFactory func() Format

var (
	factories = make(map[string]FormatFactory)
	filenames = make(map[string]string)
	mu        sync.RWMutex
)

// RegisterFormat adds a format codec to the global registry.
// ecosystem is the PURL type; names are the manifest filenames it claims.
func RegisterFormat(ecosystem string, names []string, factory FormatFactory) {
	mu.Lock()
	defer mu.Unlock()
	factories[ecosystem] = factory
	for _, name := range names {
		filenames[name] = ecosystem
	}
}

// NewFormat creates a format codec for the given ecosystem.
func NewFormat(ecosystem string) (Format, error) {
	mu.RLock()
	factory, ok := factories[ecosystem]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEcosystem, ecosystem)
	}
	return factory(), nil
}

// Detect returns the format codec that claims the given manifest filename.
func Detect(filename string) (Format, error) {
	mu.RLock()
	ecosystem, ok := filenames[filename]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: no format for filename %s", ErrUnknownEcosystem, filename)
	}
	return NewFormat(ecosystem)
}

// SupportedEcosystems returns all registered ecosystem types.
// Note: formats must be imported to be registered.
func SupportedEcosystems() []string {
	mu.RLock()
	defer mu.RUnlock()

	ecosystems := make([]string, 0, len(factories))
	for eco := range factories {
		ecosystems = append(ecosystems, eco)
	}
	return ecosystems
}
