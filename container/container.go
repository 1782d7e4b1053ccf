// Package container resolves the host item (journal, book, series) an
// article or dependent part was published in.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/finc/marcfacts/classify"
	"github.com/finc/marcfacts/extract"
	"github.com/finc/marcfacts/marc"
	"github.com/finc/marcfacts/network"
)

// DefaultTimeout bounds a remote container lookup.
const DefaultTimeout = 5 * time.Second

// Record is a container record returned by a Searcher.
type Record interface {
	ID() string
}

// BookRecord is implemented by container records that know whether they
// describe a book.
type BookRecord interface {
	IsBook() bool
}

// TitledRecord is implemented by container records that expose a title.
type TitledRecord interface {
	Title() string
}

// Query is a search issued against the index holding container records.
type Query struct {
	LookFor string
	Limit   int
}

// Searcher runs container lookups. Implementations must honour ctx.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Record, error)
}

// RemoteLookupError wraps a failed container search. It never aborts
// resolution; the resolver logs it and carries on without remote data.
type RemoteLookupError struct {
	Query string
	Err   error
}

func (e *RemoteLookupError) Error() string {
	return fmt.Sprintf("container lookup %q: %v", e.Query, e.Err)
}

func (e *RemoteLookupError) Unwrap() error {
	return e.Err
}

// Info is the resolved container description.
type Info struct {
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	Volume     string   `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue      string   `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages      string   `json:"pages,omitempty" yaml:"pages,omitempty"`
	StartPage  string   `json:"start_page,omitempty" yaml:"start_page,omitempty"`
	EndPage    string   `json:"end_page,omitempty" yaml:"end_page,omitempty"`
	Year       string   `json:"year,omitempty" yaml:"year,omitempty"`
	ISXN       string   `json:"isxn,omitempty" yaml:"isxn,omitempty"`
	RelatedIDs []string `json:"related_ids,omitempty" yaml:"related_ids,omitempty"`
	Raw773g    string   `json:"raw_773g,omitempty" yaml:"raw_773g,omitempty"`

	// Records are the container records found remotely, if any.
	Records []Record `json:"-" yaml:"-"`
}

// Empty reports whether nothing about the container is known.
func (i Info) Empty() bool {
	return i.Title == "" && i.Volume == "" && i.Issue == "" && i.Pages == "" &&
		i.Year == "" && i.ISXN == "" && len(i.RelatedIDs) == 0
}

// HasPages reports whether a page range or start page was resolved.
func (i Info) HasPages() bool {
	return i.Pages != "" || i.StartPage != ""
}

var (
	volumeSpecs = extract.Specs("936d", "953d")
	issueSpecs  = extract.Specs("936e", "953e")
	pagesSpecs  = extract.Specs("936h", "953h")
	yearSpecs   = extract.Specs("260c", "936j", "363i", "773g")
	isxnSpecs   = extract.Specs("773x", "773z")
	enumSpec    = extract.MustParseSpec("773g")
	relatedSpec = extract.MustParseSpec("773w")

	volumePattern = regexp.MustCompile(`(?i)(?:jg\.|jahrg\.|bd\.|vol\.|volume)\s*(\d+)`)
	issuePattern  = regexp.MustCompile(`(?i)(?:\bh\.|\bheft|\bnr\.|\bno\.|\bissue)\s*(\d[\d/]*)`)
	pagesPattern  = regexp.MustCompile(`(?i)(?:\bs\.|\bp\.|\bpp\.|\bseiten?)\s*(\d+(?:\s*[-‐–]\s*\d+)?)`)
	yearPattern   = regexp.MustCompile(`\((\d{4})\)`)
)

// Resolver resolves the container of one record. Results are memoized; a
// successful remote lookup is never reissued, even across Invalidate, while
// a failed one is retried on the next call. A Resolver is safe for
// concurrent use.
type Resolver struct {
	rec      *marc.Record
	profile  *network.Profile
	cls      classify.Classification
	searcher Searcher
	timeout  time.Duration

	mu      sync.Mutex
	info    *Info
	remote  []Record
	looked  bool
	lastErr error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout sets the remote lookup timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New returns a resolver. searcher may be nil to disable remote lookups.
func New(rec *marc.Record, profile *network.Profile, cls classify.Classification, searcher Searcher, opts ...Option) *Resolver {
	r := &Resolver{
		rec:      rec,
		profile:  profile,
		cls:      cls,
		searcher: searcher,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the container description, computing it on first use.
func (r *Resolver) Resolve(ctx context.Context) Info {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.info != nil {
		return *r.info
	}

	info := r.resolveLocal()
	if r.cls.IsContainerPart() && info.Title == "" && len(info.RelatedIDs) > 0 {
		for _, c := range r.containerRecords(ctx, info.RelatedIDs) {
			if t, ok := c.(TitledRecord); ok {
				if title := r.profile.FilterContainerTitle(t.Title()); title != "" {
					info.Title = title
					break
				}
			}
		}
	}
	if r.looked {
		info.Records = r.remote
	}

	// A description degraded by a failed lookup is not kept, so the next
	// call retries.
	if r.lastErr == nil || r.looked {
		r.info = &info
	}
	return info
}

// Invalidate drops the cached description. Remote results stay cached.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = nil
}

// LookupErr returns the last remote lookup failure, if any.
func (r *Resolver) LookupErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// IsContainerMonography reports whether the container is a book: its
// ISXN is longer than an ISSN, or it has none and the container record
// says it is a book.
func (r *Resolver) IsContainerMonography(ctx context.Context) bool {
	if !r.cls.IsContainerPart() {
		return false
	}
	info := r.Resolve(ctx)

	isxn := strings.TrimSpace(info.ISXN)
	if len(isxn) > 9 {
		return true
	}
	if isxn != "" {
		return false
	}

	r.mu.Lock()
	records := r.containerRecords(ctx, info.RelatedIDs)
	r.mu.Unlock()
	if len(records) == 0 {
		return false
	}
	b, ok := records[0].(BookRecord)
	return ok && b.IsBook()
}

func (r *Resolver) resolveLocal() Info {
	if !r.cls.IsContainerPart() {
		return Info{}
	}

	raw := extract.First(r.rec, enumSpec)
	info := Info{
		Raw773g:    raw,
		RelatedIDs: ContainerIDs(r.rec, r.profile),
		ISXN:       extract.First(r.rec, isxnSpecs...),
		Title:      r.profile.FilterContainerTitle(extract.First(r.rec, r.profile.ContainerTitleSpecs()...)),
	}

	if r.profile.Container.Composite {
		info.Volume = submatch(volumePattern, raw)
		info.Issue = submatch(issuePattern, raw)
		info.Pages = extract.ExtractPageRange(submatch(pagesPattern, raw))
		info.Year = submatch(yearPattern, raw)
	}

	if info.Volume == "" {
		info.Volume = firstOr(extract.First(r.rec, volumeSpecs...), submatch(volumePattern, raw))
	}
	if info.Issue == "" {
		info.Issue = firstOr(extract.First(r.rec, issueSpecs...), submatch(issuePattern, raw))
	}
	if info.Pages == "" {
		info.Pages = extract.ExtractPageRange(firstOr(extract.First(r.rec, pagesSpecs...), submatch(pagesPattern, raw)))
	}
	if info.Year == "" {
		info.Year = extract.ExtractYear(extract.First(r.rec, yearSpecs...))
	}
	info.StartPage, info.EndPage = extract.PageRange(info.Pages)

	return info
}

// containerRecords returns the memoized remote result, searching once.
// Callers hold r.mu.
func (r *Resolver) containerRecords(ctx context.Context, ids []string) []Record {
	if r.looked || r.searcher == nil || len(ids) == 0 {
		return r.remote
	}

	q := Query{LookFor: LookupQuery(ids, r.profile.LookupPrefix), Limit: len(ids)}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	records, err := r.searcher.Search(ctx, q)
	if err != nil {
		r.lastErr = &RemoteLookupError{Query: q.LookFor, Err: err}
		slog.Warn("container lookup failed", "record", r.rec.ID(), "err", r.lastErr)
		return nil
	}
	slog.Debug("container lookup complete", "record", r.rec.ID(), "results", len(records), "duration", time.Since(start))

	r.looked = true
	r.lastErr = nil
	r.remote = records
	r.info = nil
	return records
}

// ContainerIDs returns the 773$w identifiers usable for lookups: excluded
// patterns dropped, "(ISIL)" prefixes removed, duplicates collapsed.
func ContainerIDs(rec *marc.Record, profile *network.Profile) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, v := range extract.Values(rec, relatedSpec, false, "") {
		if profile.ExcludesContainerID(v) {
			continue
		}
		_, id := network.SplitControlNumber(v)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// LookupQuery builds `id:"X" OR id:"Y"`.
func LookupQuery(ids []string, prefix string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, `id:"`+strings.ReplaceAll(prefix+id, `"`, `\"`)+`"`)
	}
	return strings.Join(parts, " OR ")
}

func submatch(re *regexp.Regexp, s string) string {
	if s == "" {
		return ""
	}
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func firstOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
