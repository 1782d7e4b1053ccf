package network

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/finc/marcfacts/marc"
)

//go:embed profiles/*.yaml
var embeddedProfiles embed.FS

// Registry holds network profiles keyed by lower-cased code. It is safe
// for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	byISIL   map[string]*Profile
}

// NewRegistry returns a registry with the embedded profiles loaded. A
// broken embedded profile is a build defect and reported as an error.
func NewRegistry() (*Registry, error) {
	r := &Registry{
		profiles: make(map[string]*Profile),
		byISIL:   make(map[string]*Profile),
	}

	entries, err := embeddedProfiles.ReadDir("profiles")
	if err != nil {
		return nil, fmt.Errorf("reading embedded profiles: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := embeddedProfiles.ReadFile("profiles/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading profile %s: %w", entry.Name(), err)
		}

		profile, err := ParseProfile(data)
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", entry.Name(), err)
		}
		if err := r.Register(profile); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// LoadProfile loads a profile from a file path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates a profile.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile YAML: %w", err)
	}
	if err := profile.compile(); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Register adds or replaces a profile.
func (r *Registry) Register(p *Profile) error {
	if p.filter == nil {
		if err := p.compile(); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[strings.ToLower(p.Code)] = p
	if p.ISIL != "" {
		r.byISIL[p.ISIL] = p
	}
	return nil
}

// Get retrieves a profile by code, ignoring case.
func (r *Registry) Get(code string) (*Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[strings.ToLower(code)]
	return p, ok
}

func (r *Registry) byNetworkISIL(isil string) (*Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byISIL[isil]
	return p, ok
}

// Default returns the fallback profile.
func (r *Registry) Default() *Profile {
	if p, ok := r.Get(DefaultCode); ok {
		return p
	}
	p := &Profile{Code: DefaultCode, Name: "Default"}
	_ = p.compile()
	return p
}

// List returns all profile codes sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.profiles))
	for _, p := range r.profiles {
		codes = append(codes, p.Code)
	}
	sort.Strings(codes)
	return codes
}

// LoadFromDirectory loads every *.yaml profile in dir, replacing embedded
// profiles with the same code.
func (r *Registry) LoadFromDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading profile directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		profile, err := LoadProfile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("profile %s: %w", entry.Name(), err)
		}
		if err := r.Register(profile); err != nil {
			return err
		}
	}

	return nil
}

// ForRecord picks the profile for rec: the network named by 003, then the
// first 035 whose ISIL prefix belongs to a known network, then fallback,
// then the default profile.
func (r *Registry) ForRecord(rec *marc.Record, fallback string) *Profile {
	if p, ok := r.byNetworkISIL(rec.Source()); ok {
		return p
	}
	for _, f := range rec.FieldsByTag("035") {
		for _, v := range f.SubfieldValues("a") {
			isil, _ := SplitControlNumber(v)
			if p, ok := r.byNetworkISIL(isil); ok {
				return p
			}
		}
	}
	if fallback != "" {
		if p, ok := r.Get(fallback); ok {
			return p
		}
	}
	return r.Default()
}
