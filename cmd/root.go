// Package cmd provides CLI commands for marcfacts.
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/finc/marcfacts/config"
	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/export"
	"github.com/finc/marcfacts/marc"
	"github.com/finc/marcfacts/search"
)

func setupLogger() {
	logLevel := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "INFO"
	}

	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "marcfacts",
	Short: "Derive bibliographic facts from MARC 21 records",
	Long: `marcfacts reads MARC 21 records (MARC-XML or ISO 2709) and derives the
facts a discovery catalog shows for them: titles, authors, identifiers,
bibliographic level, formats, the host item of articles, and OpenURL
citation links.

Configuration is read from ~/.marcfacts/config.yaml, --config, and
MARCFACTS_* environment variables (MARCFACTS_NETWORK, MARCFACTS_SOLR_URL).

Examples:
  marcfacts inspect records.xml
  marcfacts openurl --resolver https://sfx.example.org/sfx records.mrc
  marcfacts export csl records.xml --pretty
  marcfacts pick 1012345678 dump.mrc > one.mrc`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	setupLogger()

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file (default: ~/.marcfacts/config.yaml)")
	flags.String("config-dir", "", "Configuration directory (default: ~/.marcfacts)")
	flags.String("network", "", "Network for records that do not identify one")
	flags.String("solr-url", "", "Solr core used for remote container lookups")
	flags.Bool("lenient", false, "Keep records with a malformed leader")

	for key, flag := range map[string]string{
		"config":     "config",
		"config_dir": "config-dir",
		"network":    "network",
		"solr.url":   "solr-url",
		"lenient":    "lenient",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("MARCFACTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(openurlCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(networksCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(pickCmd)
}

// loadConfig reads the configuration file and applies flag and
// environment overrides.
func loadConfig() (*config.Config, error) {
	if dir := viper.GetString("config_dir"); dir != "" {
		config.SetConfigDir(dir)
	}
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("network"); v != "" {
		cfg.Network = v
	}
	if v := viper.GetString("solr.url"); v != "" {
		cfg.Solr.URL = v
	}
	if viper.IsSet("solr.timeout") {
		cfg.Solr.Timeout = viper.GetDuration("solr.timeout")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// driverOptions builds the options shared by every driver of a run, so
// profiles, rules and the Solr client are loaded once.
func driverOptions(cfg *config.Config) ([]driver.Option, error) {
	reg, err := driver.Registry(cfg)
	if err != nil {
		return nil, err
	}
	mapper, err := driver.Mapper(cfg)
	if err != nil {
		return nil, err
	}
	opts := []driver.Option{
		driver.WithConfig(cfg),
		driver.WithRegistry(reg),
		driver.WithMapper(mapper),
	}
	if cfg.Solr.URL != "" {
		slog.Debug("remote container lookups enabled", "solr", cfg.Solr.URL)
		opts = append(opts, driver.WithSearcher(search.NewSolrClient(cfg.SearchConfig())))
	}
	return opts, nil
}

// readInput reads a file argument, or stdin for "" and "-".
func readInput(args []string) (data []byte, name string, err error) {
	if len(args) == 0 || args[0] == "" || args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		return data, "stdin", nil
	}
	data, err = os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("opening input file: %w", err)
	}
	return data, args[0], nil
}

// readRecords parses every record of the input with the detected parser.
func readRecords(args []string) ([]*marc.Record, error) {
	data, name, err := readInput(args)
	if err != nil {
		return nil, err
	}
	peek := data
	if len(peek) > 512 {
		peek = peek[:512]
	}
	parser, err := export.DetectParser(name, peek)
	if err != nil {
		return nil, err
	}
	slog.Debug("reading records", "source", name, "format", parser.Name())

	return parser.Parse(bytes.NewReader(data), &export.ParseOptions{
		Lenient:    viper.GetBool("lenient"),
		SourceName: name,
	})
}

// loadDrivers reads the input and builds one driver per record.
func loadDrivers(args []string) ([]*driver.Driver, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	opts, err := driverOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	records, err := readRecords(args)
	if err != nil {
		return nil, nil, err
	}

	drivers := make([]*driver.Driver, 0, len(records))
	for _, rec := range records {
		d, err := driver.New(rec, opts...)
		if err != nil {
			return nil, nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, cfg, nil
}
