package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/export"
)

var (
	exportOutput   string
	exportWorkers  int
	exportPretty   bool
	exportResolver string
)

var exportCmd = &cobra.Command{
	Use:   "export <format> [file]",
	Short: "Write records in another format",
	Long: `Serialize records with one of the registered output formats.

Container resolution runs on --workers goroutines before writing, so
remote lookups for large files overlap.

Formats: bibtex, csl, json, marc, marcxml, openurl

Examples:
  marcfacts export csl records.xml --pretty
  marcfacts export bibtex dump.mrc -o refs.bib
  marcfacts export json --workers 8 --solr-url http://localhost:8983/solr/biblio dump.mrc`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().IntVarP(&exportWorkers, "workers", "w", runtime.NumCPU(), "Records resolved in parallel")
	exportCmd.Flags().BoolVar(&exportPretty, "pretty", false, "Pretty-print JSON formats")
	exportCmd.Flags().StringVar(&exportResolver, "resolver", "", "Link resolver base URL for the openurl format")
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	serializer, err := export.GetSerializer(args[0])
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(export.DefaultRegistry.List(), ", "))
	}

	drivers, cfg, err := loadDrivers(args[1:])
	if err != nil {
		return err
	}
	if err := resolveContainers(cmd, drivers, exportWorkers); err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if exportOutput != "" {
		f, createErr := os.Create(exportOutput)
		if createErr != nil {
			return fmt.Errorf("creating output file: %w", createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing output file: %w", cerr)
			}
		}()
		w = f
	}

	resolver := exportResolver
	if resolver == "" {
		resolver = cfg.OpenURL.Resolver
	}
	opts := &export.SerializeOptions{Pretty: exportPretty, Resolver: resolver}
	if err := serializer.Serialize(cmd.Context(), w, drivers, opts); err != nil {
		return fmt.Errorf("writing %s: %w", serializer.Name(), err)
	}
	slog.Info("exported records", "count", len(drivers), "format", serializer.Name())
	return nil
}

// resolveContainers warms every driver's container cache in parallel.
// Failed lookups are logged; the drivers fall back to local data.
func resolveContainers(cmd *cobra.Command, drivers []*driver.Driver, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(workers)
	for _, d := range drivers {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d.Container(ctx)
			if err := d.ContainerLookupErr(); err != nil {
				slog.Warn("container lookup failed", "id", d.ID(), "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}
