package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/finc/marcfacts/driver"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List and inspect network profiles",
	Long: `Network profiles describe how a library network catalogs host items,
how its records are linked, and which container ids can be looked up.
Profiles from networks_dir in the configuration replace embedded ones.`,
}

var networksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := driver.Registry(cfg)
		if err != nil {
			return err
		}

		codes := registry.List()
		if len(codes) == 0 {
			fmt.Println("No networks found")
			return nil
		}

		fmt.Println("Available networks:")
		for _, code := range codes {
			p, _ := registry.Get(code)
			isil := ""
			if p.ISIL != "" {
				isil = " (" + p.ISIL + ")"
			}
			name := ""
			if p.Name != "" {
				name = " - " + p.Name
			}
			marker := " "
			if code == cfg.Network {
				marker = "*"
			}
			fmt.Printf(" %s%s%s%s\n", marker, code, isil, name)
		}
		return nil
	},
}

var networksShowCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Show a network profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := driver.Registry(cfg)
		if err != nil {
			return err
		}

		p, ok := registry.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown network: %s", args[0])
		}

		out, err := yaml.Marshal(p)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	networksCmd.AddCommand(networksListCmd)
	networksCmd.AddCommand(networksShowCmd)
}
