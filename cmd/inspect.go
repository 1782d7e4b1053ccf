package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/finc/marcfacts/citation"
	"github.com/finc/marcfacts/classify"
	"github.com/finc/marcfacts/container"
	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/helpers"
)

const summaryLength = 200

var inspectOutput string

// inspection is what inspect prints for one record.
type inspection struct {
	ID                string                     `yaml:"id" json:"id"`
	Network           string                     `yaml:"network" json:"network"`
	Link              string                     `yaml:"link,omitempty" json:"link,omitempty"`
	Classification    classify.Classification    `yaml:"classification" json:"classification"`
	Formats           []string                   `yaml:"formats" json:"formats"`
	SimplifiedFormats []string                   `yaml:"simplified_formats" json:"simplified_formats"`
	Title             string                     `yaml:"title,omitempty" json:"title,omitempty"`
	OriginalTitle     string                     `yaml:"original_title,omitempty" json:"original_title,omitempty"`
	Edition           string                     `yaml:"edition,omitempty" json:"edition,omitempty"`
	Summary           string                     `yaml:"summary,omitempty" json:"summary,omitempty"`
	Authors           []driver.Author            `yaml:"authors,omitempty" json:"authors,omitempty"`
	Publication       []driver.PublicationDetail `yaml:"publication,omitempty" json:"publication,omitempty"`
	Series            []driver.Series            `yaml:"series,omitempty" json:"series,omitempty"`
	Languages         []string                   `yaml:"languages,omitempty" json:"languages,omitempty"`
	ISBN              string                     `yaml:"isbn,omitempty" json:"isbn,omitempty"`
	ISSN              string                     `yaml:"issn,omitempty" json:"issn,omitempty"`
	ZDBID             string                     `yaml:"zdb_id,omitempty" json:"zdb_id,omitempty"`
	Container         *container.Info            `yaml:"container,omitempty" json:"container,omitempty"`
	ContainerIsBook   bool                       `yaml:"container_is_book,omitempty" json:"container_is_book,omitempty"`
	Holdings          []driver.Holding           `yaml:"holdings,omitempty" json:"holdings,omitempty"`
	OpenURL           citation.Params            `yaml:"openurl" json:"openurl"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show the facts derived from each record",
	Long: `Parse records and print, per record, the network, classification,
formats, titles, authors, identifiers, container and OpenURL parameters.

Input defaults to stdin.

Examples:
  marcfacts inspect records.xml
  marcfacts inspect -o json dump.mrc`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "yaml", "Output format: yaml or json")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if inspectOutput != "yaml" && inspectOutput != "json" {
		return fmt.Errorf("unknown output format %q (want yaml or json)", inspectOutput)
	}

	drivers, cfg, err := loadDrivers(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := make([]inspection, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, inspect(ctx, d, len(cfg.Holdings.ISILs) > 0))
	}

	if inspectOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	for _, item := range out {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

func inspect(ctx context.Context, d *driver.Driver, filterHoldings bool) inspection {
	item := inspection{
		ID:                d.ID(),
		Network:           d.Network().Code,
		Link:              d.NetworkLink(),
		Classification:    d.Classification(),
		Formats:           d.Formats(),
		SimplifiedFormats: d.SimplifiedFormats(),
		Title:             d.Title(),
		OriginalTitle:     d.OriginalTitle(),
		Edition:           d.Edition(),
		Authors:           d.Authors(),
		Publication:       d.PublicationDetails(),
		Series:            d.Series(),
		Languages:         d.LanguageNames(),
		ISBN:              d.CleanISBN(),
		ISSN:              d.CleanISSN(),
		ZDBID:             d.ZDBID(),
		Holdings:          d.Field924(filterHoldings),
		OpenURL:           citation.Build(ctx, d),
	}
	if summary := d.Summary(); len(summary) > 0 {
		item.Summary = helpers.TruncateText(summary[0], summaryLength)
	}
	if info := d.Container(ctx); !info.Empty() {
		item.Container = &info
		item.ContainerIsBook = d.IsContainerMonography(ctx)
	}
	if err := d.ContainerLookupErr(); err != nil {
		slog.Warn("container lookup failed, showing local data", "id", d.ID(), "err", err)
	}
	return item
}
