// Package citation builds OpenURL (Z39.88-2004 KEV) parameter sets from a
// record. Which parameters are written depends on the citation kind:
// articles describe their container, books their own publication, journals
// carry a ZDB id, and everything else falls back to Dublin Core keys.
package citation

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/finc/marcfacts/classify"
	"github.com/finc/marcfacts/config"
	"github.com/finc/marcfacts/container"
	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/extract"
	"github.com/finc/marcfacts/formatmap"
	"github.com/finc/marcfacts/helpers"
)

const (
	ctxVersion  = "Z39.88-2004"
	ctxEncoding = "info:ofi/enc:UTF-8"

	fmtBook    = "info:ofi/fmt:kev:mtx:book"
	fmtJournal = "info:ofi/fmt:kev:mtx:journal"
	fmtDC      = "info:ofi/fmt:kev:mtx:dc"
)

// Source is what Build reads. *driver.Driver implements it.
type Source interface {
	Config() *config.Config
	Classification() classify.Classification
	SimplifiedFormats() []string

	Title() string
	PartNumber() string
	Edition() string
	FirstAuthor() string
	Series() []driver.Series
	PublicationDetails() []driver.PublicationDetail
	PublicationDates() []string
	Publishers() []string
	Languages() []string
	CleanISBN() string
	CleanISSN() string
	ZDBID() string

	Container(ctx context.Context) container.Info
	IsContainerMonography(ctx context.Context) bool
}

var _ Source = (*driver.Driver)(nil)

// Context holds the keys every kind carries.
type Context struct {
	Version  string `url:"ctx_ver"`
	Encoding string `url:"ctx_enc"`
	Referrer string `url:"rfr_id,omitempty"`
	Title    string `url:"rft.title,omitempty"`
	Date     string `url:"rft.date,omitempty"`
}

type bookParams struct {
	Context
	ValueFormat string `url:"rft_val_fmt"`
	Genre       string `url:"rft.genre"`
	BookTitle   string `url:"rft.btitle,omitempty"`
	Volume      string `url:"rft.volume,omitempty"`
	Series      string `url:"rft.series,omitempty"`
	Author      string `url:"rft.au,omitempty"`
	Place       string `url:"rft.place,omitempty"`
	Publisher   string `url:"rft.pub,omitempty"`
	Edition     string `url:"rft.edition,omitempty"`
	ISBN        string `url:"rft.isbn,omitempty"`
}

type articleParams struct {
	Context
	ValueFormat  string `url:"rft_val_fmt"`
	Genre        string `url:"rft.genre"`
	ISSN         string `url:"rft.issn,omitempty"`
	ISBN         string `url:"rft.isbn,omitempty"`
	Volume       string `url:"rft.volume,omitempty"`
	Issue        string `url:"rft.issue,omitempty"`
	StartPage    string `url:"rft.spage,omitempty"`
	Pages        string `url:"rft.pages,omitempty"`
	JournalTitle string `url:"rft.jtitle,omitempty"`
	ArticleTitle string `url:"rft.atitle,omitempty"`
	Author       string `url:"rft.au,omitempty"`
	Format       string `url:"rft.format,omitempty"`
	Language     string `url:"rft.language,omitempty"`
}

type journalParams struct {
	Context
	ValueFormat  string `url:"rft_val_fmt"`
	Genre        string `url:"rft.genre"`
	JournalTitle string `url:"rft.jtitle,omitempty"`
	ISSN         string `url:"rft.issn,omitempty"`
	Place        string `url:"rft.place,omitempty"`
	Publisher    string `url:"rft.pub,omitempty"`
	PID          string `url:"pid,omitempty"`
}

type unknownParams struct {
	Context
	ValueFormat string `url:"rft_val_fmt"`
	Creator     string `url:"rft.creator,omitempty"`
	Publisher   string `url:"rft.pub,omitempty"`
	Format      string `url:"rft.format,omitempty"`
	Language    string `url:"rft.language,omitempty"`
}

// Build assembles the OpenURL parameters for src. It only reads src.
func Build(ctx context.Context, src Source) Params {
	kind := SelectKind(src)

	base := Context{
		Version:  ctxVersion,
		Encoding: ctxEncoding,
		Referrer: referrer(src.Config()),
		Title:    src.Title(),
		Date:     firstOf(src.PublicationDates()),
	}

	var v any
	switch kind {
	case Book:
		v = buildBook(ctx, src, base)
	case Article:
		v = buildArticle(ctx, src, base)
	case Journal:
		v = buildJournal(src, base)
	default:
		v = buildUnknown(src, base)
	}

	values, err := query.Values(v)
	if err != nil {
		slog.Error("unable to encode OpenURL parameters", "kind", kind, "err", err)
		values = url.Values{}
	}
	return Params{Kind: kind, Values: dropEmpty(values)}
}

func buildBook(ctx context.Context, src Source, base Context) bookParams {
	p := bookParams{
		Context:     base,
		ValueFormat: fmtBook,
		Genre:       "book",
		BookTitle:   src.Title(),
		Author:      src.FirstAuthor(),
		Publisher:   firstOf(src.Publishers()),
		Edition:     src.Edition(),
		ISBN:        src.CleanISBN(),
	}
	p.Volume = src.PartNumber()
	if p.Volume == "" {
		p.Volume = src.Container(ctx).Volume
	}
	if series := src.Series(); len(series) > 0 {
		p.Series = series[0].Name
	}
	if details := src.PublicationDetails(); len(details) > 0 {
		p.Date = extract.DigitsOnly(details[0].Date)
		p.Place = details[0].Place
	}
	return p
}

func buildArticle(ctx context.Context, src Source, base Context) articleParams {
	info := src.Container(ctx)
	p := articleParams{
		Context:      base,
		ValueFormat:  fmtJournal,
		Genre:        "article",
		ISSN:         src.CleanISSN(),
		ISBN:         src.CleanISBN(),
		Volume:       info.Volume,
		Issue:        info.Issue,
		JournalTitle: extract.StripInPrefix(info.Title),
		ArticleTitle: src.Title(),
		Author:       src.FirstAuthor(),
		Format:       formatmap.LabelArticle,
		Language:     firstOf(src.Languages()),
	}
	if src.IsContainerMonography(ctx) {
		p.Genre = "bookitem"
	}

	// The container's identifier fills whichever of ISSN/ISBN the article
	// itself lacks.
	if p.ISSN == "" {
		p.ISSN = helpers.CleanISSN([]string{info.ISXN})
	}
	if p.ISBN == "" {
		p.ISBN = helpers.CleanISBN([]string{info.ISXN})
	}

	if info.Year != "" {
		p.Date = info.Year
	}

	switch {
	case !info.HasPages():
		p.Pages = strings.TrimSpace(info.Raw773g)
	case strings.Contains(info.Pages, "-"):
		p.Pages = info.Pages
	case info.Pages != "":
		p.StartPage = info.Pages
	default:
		p.StartPage = info.StartPage
	}
	return p
}

func buildJournal(src Source, base Context) journalParams {
	p := journalParams{
		Context:      base,
		ValueFormat:  fmtJournal,
		Genre:        "journal",
		JournalTitle: src.Title(),
		ISSN:         src.CleanISSN(),
		Publisher:    firstOf(src.Publishers()),
	}
	if places := placesOf(src.PublicationDetails()); len(places) > 0 {
		p.Place = places[0]
	}
	if id := src.ZDBID(); id != "" {
		p.PID = "zdbid=" + id
	}
	return p
}

func buildUnknown(src Source, base Context) unknownParams {
	return unknownParams{
		Context:     base,
		ValueFormat: fmtDC,
		Creator:     src.FirstAuthor(),
		Publisher:   firstOf(src.Publishers()),
		Format:      firstOf(src.SimplifiedFormats()),
		Language:    firstOf(src.Languages()),
	}
}

func referrer(cfg *config.Config) string {
	if cfg == nil || cfg.OpenURL.RfrID == "" {
		return ""
	}
	return "info:sid/" + cfg.OpenURL.RfrID + ":generator"
}

func placesOf(details []driver.PublicationDetail) []string {
	var out []string
	for _, d := range details {
		if d.Place != "" {
			out = append(out, d.Place)
		}
	}
	return out
}

func firstOf(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func dropEmpty(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for k, vs := range values {
		for _, v := range vs {
			if strings.TrimSpace(v) != "" {
				out.Add(k, v)
			}
		}
	}
	return out
}
