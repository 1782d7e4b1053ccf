package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finc/marcfacts/marc"
)

var pickCmd = &cobra.Command{
	Use:   "pick <controlnum> [file]",
	Short: "Pull a single record from the data by control number",
	Long: `Write the first record whose 001 equals controlnum, byte for byte as it
appears in the input. Input defaults to stdin.

Examples:
  marcfacts pick 1012345678 dump.mrc > one.mrc`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		data, name, err := readInput(args[1:])
		if err != nil {
			return err
		}

		opts := []marc.ParseOption{}
		if viper.GetBool("lenient") {
			opts = append(opts, marc.Lenient())
		}
		for _, chunk := range marc.Split(data) {
			rec, err := marc.Parse(chunk, opts...)
			if err != nil {
				continue
			}
			if rec.ID() == id {
				_, err := os.Stdout.WriteString(chunk)
				return err
			}
		}
		return fmt.Errorf("no record %s in %s", id, name)
	},
}
