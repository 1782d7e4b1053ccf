package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/finc/marcfacts/driver"
)

var formatsLabels bool

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Inspect the format mapping rules",
}

var formatsRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective format rule table",
	Long: `Print the rule table used to assign format labels, either the embedded
default or formats.rules_file from the configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		mapper, err := driver.Mapper(cfg)
		if err != nil {
			return err
		}

		table := mapper.Table()
		if formatsLabels {
			for _, l := range table.Labels {
				fmt.Println(l)
			}
			return nil
		}

		out, err := yaml.Marshal(table)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	formatsRulesCmd.Flags().BoolVar(&formatsLabels, "labels", false, "Only list the defined labels")
	formatsCmd.AddCommand(formatsRulesCmd)
}
