package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finc/marcfacts/marc"
)

var validateVerbose bool

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check that every record parses",
	Long: `Parse each record on its own and report records that are malformed
(for example a leader that is not 24 characters wide) or cannot be
decoded at all. Exits non-zero when any record fails.

Input defaults to stdin.

Examples:
  marcfacts validate dump.mrc
  marcfacts validate --lenient --verbose records.xml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVarP(&validateVerbose, "verbose", "v", false, "Show every record")
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, name, err := readInput(args)
	if err != nil {
		return err
	}

	var opts []marc.ParseOption
	if viper.GetBool("lenient") {
		opts = append(opts, marc.Lenient())
	}

	var valid, malformed, unparsable int
	for i, chunk := range marc.Split(data) {
		rec, err := marc.Parse(chunk, opts...)
		var (
			me *marc.MalformedRecordError
			ue *marc.UnparsableRecordError
		)
		switch {
		case err == nil:
			valid++
			if validateVerbose {
				fmt.Printf("  ok      %d %s\n", i+1, rec.ID())
			}
		case errors.As(err, &me):
			malformed++
			fmt.Printf("  invalid %d: %v\n", i+1, err)
		case errors.As(err, &ue):
			unparsable++
			fmt.Printf("  broken  %d: %v\n", i+1, err)
		default:
			return err
		}
	}

	total := valid + malformed + unparsable
	if malformed+unparsable > 0 {
		return fmt.Errorf("%s: %d of %d records failed (%d malformed, %d unparsable)", name, malformed+unparsable, total, malformed, unparsable)
	}
	fmt.Printf("✓ Valid: parsed %d records from %s\n", total, name)
	return nil
}
