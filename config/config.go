// Package config holds the settings that VuFind-style drivers read from
// global configuration: default network, OpenURL referrer, container
// lookup index, format rule overrides and holding filters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/finc/marcfacts/network"
	"github.com/finc/marcfacts/search"
)

// Config is passed explicitly to every driver.
type Config struct {
	// Network is used when a record does not identify its network.
	Network string `yaml:"network" json:"network" mapstructure:"network"`

	// NetworksDir holds additional network profiles (*.yaml).
	NetworksDir string `yaml:"networks_dir,omitempty" json:"networks_dir,omitempty" mapstructure:"networks_dir"`

	OpenURL  OpenURL  `yaml:"openurl" json:"openurl" mapstructure:"openurl"`
	Solr     Solr     `yaml:"solr" json:"solr" mapstructure:"solr"`
	Formats  Formats  `yaml:"formats,omitempty" json:"formats,omitempty" mapstructure:"formats"`
	Holdings Holdings `yaml:"holdings,omitempty" json:"holdings,omitempty" mapstructure:"holdings"`
}

// OpenURL configures citation links.
type OpenURL struct {
	// RfrID becomes rfr_id=info:sid/<RfrID>:generator.
	RfrID    string `yaml:"rfr_id" json:"rfr_id" mapstructure:"rfr_id"`
	Resolver string `yaml:"resolver,omitempty" json:"resolver,omitempty" mapstructure:"resolver"`
}

// Solr configures the index used for container lookups. An empty URL
// disables remote lookups.
type Solr struct {
	URL         string        `yaml:"url,omitempty" json:"url,omitempty" mapstructure:"url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	MaxRetries  int           `yaml:"max_retries" json:"max_retries" mapstructure:"max_retries"`
	IDField     string        `yaml:"id_field" json:"id_field" mapstructure:"id_field"`
	RecordField string        `yaml:"record_field" json:"record_field" mapstructure:"record_field"`
}

// Formats overrides the embedded format rule table.
type Formats struct {
	RulesFile string `yaml:"rules_file,omitempty" json:"rules_file,omitempty" mapstructure:"rules_file"`
}

// Holdings configures the filtered 924 view. ISILs are shell patterns
// ("DE-15*").
type Holdings struct {
	ISILs []string `yaml:"isils,omitempty" json:"isils,omitempty" mapstructure:"isils"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Network: network.DefaultCode,
		OpenURL: OpenURL{RfrID: "finc"},
		Solr: Solr{
			Timeout:     5 * time.Second,
			MaxRetries:  2,
			IDField:     "id",
			RecordField: "fullrecord",
		},
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if c.Network == "" {
		errs = append(errs, errors.New("network must not be empty"))
	}
	if c.Solr.Timeout < 0 {
		errs = append(errs, fmt.Errorf("solr.timeout %s is negative", c.Solr.Timeout))
	}
	if c.Solr.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("solr.max_retries %d is negative", c.Solr.MaxRetries))
	}
	for _, p := range c.Holdings.ISILs {
		if _, err := path.Match(p, ""); err != nil {
			errs = append(errs, fmt.Errorf("holdings.isils: bad pattern %q: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// SearchConfig converts the solr section for search.NewSolrClient.
func (c *Config) SearchConfig() search.Config {
	return search.Config{
		URL:         c.Solr.URL,
		Timeout:     c.Solr.Timeout,
		MaxRetries:  c.Solr.MaxRetries,
		IDField:     c.Solr.IDField,
		RecordField: c.Solr.RecordField,
	}
}

// MatchesISIL reports whether isil is selected by the holdings patterns.
func (c *Config) MatchesISIL(isil string) bool {
	for _, p := range c.Holdings.ISILs {
		if ok, _ := path.Match(p, isil); ok {
			return true
		}
	}
	return false
}

// configDirOverride holds a user-specified configuration directory.
// When empty, the default $HOME/.marcfacts is used.
var configDirOverride string

// SetConfigDir overrides the default configuration directory.
func SetConfigDir(dir string) {
	configDirOverride = dir
}

// ConfigDir returns the marcfacts configuration directory.
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".marcfacts"), nil
}

// DefaultPath returns the path of config.yaml in the configuration directory.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads a configuration file over the defaults. An empty path means
// DefaultPath, which may be absent.
func Load(p string) (*Config, error) {
	explicit := p != ""
	if !explicit {
		var err error
		if p, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
