package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/finc/marcfacts/citation"
)

var (
	openurlResolver string
	openurlKind     bool
	openurlWorkers  int
)

var openurlCmd = &cobra.Command{
	Use:   "openurl [file]",
	Short: "Print an OpenURL for each record",
	Long: `Build OpenURL 1.0 (Z39.88-2004 KEV) citation links. Without a resolver
only the query string is printed. Containers of articles are resolved on
--workers goroutines first.

Examples:
  marcfacts openurl records.xml
  marcfacts openurl --resolver https://sfx.example.org/sfx records.xml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		drivers, cfg, err := loadDrivers(args)
		if err != nil {
			return err
		}

		if err := resolveContainers(cmd, drivers, openurlWorkers); err != nil {
			return err
		}

		resolver := openurlResolver
		if resolver == "" {
			resolver = cfg.OpenURL.Resolver
		}
		out := cmd.OutOrStdout()
		for _, d := range drivers {
			p := citation.Build(cmd.Context(), d)
			if openurlKind {
				fmt.Fprintf(out, "%s\t%s\t%s\n", d.ID(), p.Kind, p.URL(resolver))
				continue
			}
			fmt.Fprintln(out, p.URL(resolver))
		}
		return nil
	},
}

func init() {
	openurlCmd.Flags().StringVar(&openurlResolver, "resolver", "", "Link resolver base URL (default: openurl.resolver from config)")
	openurlCmd.Flags().BoolVar(&openurlKind, "kind", false, "Prefix each link with the record id and citation kind")
	openurlCmd.Flags().IntVarP(&openurlWorkers, "workers", "w", runtime.NumCPU(), "Records resolved in parallel")
}
