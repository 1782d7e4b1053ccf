package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Registry holds registered formats.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Format
}

// DefaultRegistry is the global format registry.
var DefaultRegistry = NewRegistry()

// NewRegistry creates a new format registry.
func NewRegistry() *Registry {
	return &Registry{
		formats: make(map[string]Format),
	}
}

// Register adds a format to the registry.
func (r *Registry) Register(f Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats[f.Name()] = f
}

// Get retrieves a format by name.
func (r *Registry) Get(name string) (Format, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formats[strings.ToLower(name)]
	return f, ok
}

// GetParser retrieves a parser by name.
func (r *Registry) GetParser(name string) (Parser, error) {
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", name)
	}
	p, ok := f.(Parser)
	if !ok {
		return nil, fmt.Errorf("format %s does not support parsing", name)
	}
	return p, nil
}

// GetSerializer retrieves a serializer by name.
func (r *Registry) GetSerializer(name string) (Serializer, error) {
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", name)
	}
	s, ok := f.(Serializer)
	if !ok {
		return nil, fmt.Errorf("format %s does not support serialization", name)
	}
	return s, nil
}

// List returns all registered format names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DetectParser picks a parser from the file extension, then from content.
func (r *Registry) DetectParser(filename string, peek []byte) (Parser, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	peek = bytes.TrimSpace(peek)

	for _, name := range r.List() {
		p, err := r.GetParser(name)
		if err != nil {
			continue
		}
		if ext != "" && slices.Contains(p.Extensions(), ext) {
			return p, nil
		}
	}
	if len(peek) > 0 {
		for _, name := range r.List() {
			p, err := r.GetParser(name)
			if err != nil {
				continue
			}
			if p.CanParse(peek) {
				return p, nil
			}
		}
	}

	return nil, fmt.Errorf("could not detect record format for %s", filename)
}

// Register adds a format to the default registry.
func Register(f Format) {
	DefaultRegistry.Register(f)
}

// Get retrieves a format from the default registry.
func Get(name string) (Format, bool) {
	return DefaultRegistry.Get(name)
}

// GetParser retrieves a parser from the default registry.
func GetParser(name string) (Parser, error) {
	return DefaultRegistry.GetParser(name)
}

// GetSerializer retrieves a serializer from the default registry.
func GetSerializer(name string) (Serializer, error) {
	return DefaultRegistry.GetSerializer(name)
}

// DetectParser detects the input format using the default registry.
func DetectParser(filename string, peek []byte) (Parser, error) {
	return DefaultRegistry.DetectParser(filename, peek)
}
