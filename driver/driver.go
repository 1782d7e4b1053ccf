// Package driver puts a parsed MARC record together with its network
// profile, configuration, classification, container resolver and format
// mapper, and exposes the read-only getters a catalog view needs.
package driver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/finc/marcfacts/classify"
	"github.com/finc/marcfacts/config"
	"github.com/finc/marcfacts/container"
	"github.com/finc/marcfacts/formatmap"
	"github.com/finc/marcfacts/marc"
	"github.com/finc/marcfacts/network"
)

var defaultRegistry = sync.OnceValues(network.NewRegistry)

// Driver is the facade over one record. It is safe for concurrent use;
// all getters are reads, and the container and format caches are guarded.
type Driver struct {
	rec      *marc.Record
	cfg      *config.Config
	profile  *network.Profile
	mapper   *formatmap.Mapper
	cls      classify.Classification
	resolver *container.Resolver

	formatsOnce sync.Once
	formats     []string
}

type options struct {
	cfg       *config.Config
	profile   *network.Profile
	registry  *network.Registry
	searcher  container.Searcher
	mapper    *formatmap.Mapper
	timeout   time.Duration
	parseOpts []marc.ParseOption
}

// Option configures a Driver.
type Option func(*options)

// WithConfig sets the configuration. The default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithProfile pins the network profile instead of detecting it.
func WithProfile(p *network.Profile) Option {
	return func(o *options) { o.profile = p }
}

// WithRegistry sets the registry used to detect the network.
func WithRegistry(r *network.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithSearcher enables remote container lookups. Share one searcher
// between drivers; it is expected to be safe for concurrent use.
func WithSearcher(s container.Searcher) Option {
	return func(o *options) { o.searcher = s }
}

// WithMapper sets the format mapper.
func WithMapper(m *formatmap.Mapper) Option {
	return func(o *options) { o.mapper = m }
}

// WithLookupTimeout bounds remote container lookups.
func WithLookupTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithParseOptions is passed to marc.Parse by FromFullRecord.
func WithParseOptions(opts ...marc.ParseOption) Option {
	return func(o *options) { o.parseOpts = append(o.parseOpts, opts...) }
}

// New builds a driver for rec. It fails only when the configured network
// profiles or format rules cannot be loaded.
func New(rec *marc.Record, opts ...Option) (*Driver, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg == nil {
		o.cfg = config.Default()
	}

	if o.profile == nil {
		reg := o.registry
		if reg == nil {
			var err error
			if reg, err = Registry(o.cfg); err != nil {
				return nil, err
			}
		}
		o.profile = reg.ForRecord(rec, o.cfg.Network)
	}

	if o.mapper == nil {
		var err error
		if o.mapper, err = Mapper(o.cfg); err != nil {
			return nil, err
		}
	}

	timeout := o.timeout
	if timeout == 0 {
		timeout = o.cfg.Solr.Timeout
	}

	d := &Driver{
		rec:     rec,
		cfg:     o.cfg,
		profile: o.profile,
		mapper:  o.mapper,
		cls:     classify.Classify(rec),
	}
	d.resolver = container.New(rec, o.profile, d.cls, o.searcher, container.WithTimeout(timeout))
	return d, nil
}

// FromFullRecord parses a stored MARC-XML or ISO 2709 blob and builds a
// driver for it. Parse failures are returned unchanged.
func FromFullRecord(raw string, opts ...Option) (*Driver, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	rec, err := marc.Parse(raw, o.parseOpts...)
	if err != nil {
		return nil, err
	}
	return New(rec, opts...)
}

// Registry returns the network registry for cfg: the embedded profiles,
// plus cfg.NetworksDir when set.
func Registry(cfg *config.Config) (*network.Registry, error) {
	if cfg.NetworksDir == "" {
		reg, err := defaultRegistry()
		if err != nil {
			return nil, fmt.Errorf("loading network profiles: %w", err)
		}
		return reg, nil
	}
	reg, err := network.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("loading network profiles: %w", err)
	}
	if err := reg.LoadFromDirectory(cfg.NetworksDir); err != nil {
		return nil, fmt.Errorf("loading network profiles from %s: %w", cfg.NetworksDir, err)
	}
	return reg, nil
}

// Mapper returns the format mapper for cfg.
func Mapper(cfg *config.Config) (*formatmap.Mapper, error) {
	if cfg.Formats.RulesFile != "" {
		return formatmap.LoadFile(cfg.Formats.RulesFile)
	}
	return formatmap.Default()
}

// Record returns the underlying record.
func (d *Driver) Record() *marc.Record { return d.rec }

// Config returns the configuration the driver was built with.
func (d *Driver) Config() *config.Config { return d.cfg }

// ID returns the record's control number.
func (d *Driver) ID() string { return d.rec.ID() }

// Network returns the record's network profile.
func (d *Driver) Network() *network.Profile { return d.profile }

// NetworkLink returns the record's URL in its network's catalog, or "".
func (d *Driver) NetworkLink() string { return d.profile.Link(d.rec) }

// Classification returns the leader/fixed-field predicates.
func (d *Driver) Classification() classify.Classification { return d.cls }

// Formats returns the mapped format labels.
func (d *Driver) Formats() []string {
	d.formatsOnce.Do(func() {
		d.formats = d.mapper.Formats(d.rec, d.cls)
	})
	return append([]string(nil), d.formats...)
}

// SimplifiedFormats returns Formats after Online/EBook simplification.
func (d *Driver) SimplifiedFormats() []string {
	return formatmap.Simplify(d.Formats(), d.cls.IsElectronic)
}

// Container resolves the host item. Records that are not articles or
// dependent parts have an empty container.
func (d *Driver) Container(ctx context.Context) container.Info {
	return d.resolver.Resolve(ctx)
}

// ContainerTitle returns the container title or "".
func (d *Driver) ContainerTitle(ctx context.Context) string {
	return d.Container(ctx).Title
}

// ContainerIDs returns the 773$w identifiers usable for lookups.
func (d *Driver) ContainerIDs() []string {
	return container.ContainerIDs(d.rec, d.profile)
}

// IsContainerMonography reports whether the container is a book.
func (d *Driver) IsContainerMonography(ctx context.Context) bool {
	return d.resolver.IsContainerMonography(ctx)
}

// ContainerLookupErr returns the last failed remote container lookup.
func (d *Driver) ContainerLookupErr() error {
	return d.resolver.LookupErr()
}

// InvalidateContainer drops the cached container description.
func (d *Driver) InvalidateContainer() {
	d.resolver.Invalidate()
}
