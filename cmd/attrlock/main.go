// Package main provides the attrlock binary entry point.
// attrlock is tooling around declarative lock configuration files: it
// validates them and shows the effective locked attributes per type.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/attrlock/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "attrlock"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "attrlock",
		Short: "Attribute lock configuration tooling",
		Long: `attrlock validates and inspects declarative lock configuration files.

A lock configuration declares, per model type, which attributes are
locked once a record is persisted, with what message, and with which
reaction mode (error, warn, fatal). Types may extend a parent type,
inheriting its declarations as a snapshot.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(lintCmd())
	cmd.AddCommand(showCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func configureLogging(logLevel string) {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [config-file]",
		Short: "Validate a lock configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, source, err := loadConfig(args)
			if err != nil {
				return err
			}
			return runLint(cmd.OutOrStdout(), cfg, source)
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [config-file] [type]",
		Short: "Show effective locked attributes per type",
		Long: `Show builds the registry from a lock configuration file and prints
the effective locked attributes for each type, including attributes
inherited through extends.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, source, err := loadConfig(args)
			if err != nil {
				return err
			}
			typeName := ""
			if len(args) > 1 {
				typeName = args[1]
			}
			return runShow(cmd.OutOrStdout(), cfg, source, typeName)
		},
	}
}

// loadConfig loads from the explicit argument when one is given,
// otherwise layers the user config and the discovered project config
// through the loader. The returned source labels error and lint output.
func loadConfig(args []string) (*config.Config, string, error) {
	if len(args) > 0 {
		cfg, err := config.LoadFromFile(args[0])
		return cfg, args[0], err
	}

	loader := config.NewLoader(nil)
	cfg, err := loader.Load()
	if err != nil {
		return nil, "", err
	}
	if len(cfg.Types) == 0 {
		return nil, "", fmt.Errorf("no config file given and no %s found", config.ProjectConfigFile)
	}
	source := loader.FindProjectConfig()
	if source == "" {
		source = "user config"
	}
	return cfg, source, nil
}

func runLint(out io.Writer, cfg *config.Config, source string) error {
	if _, err := cfg.Build(); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	fmt.Fprintf(out, "%s: OK (%d types)\n", source, len(cfg.Types))
	return nil
}

func runShow(out io.Writer, cfg *config.Config, source, typeName string) error {
	reg, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	names := []string{typeName}
	if typeName == "" {
		names = cfg.TypeNames()
	}

	for _, name := range names {
		entries := reg.Entries(name)
		if len(entries) == 0 {
			fmt.Fprintf(out, "%s: no locked attributes\n", name)
			continue
		}
		fmt.Fprintf(out, "%s:\n", name)
		for _, entry := range entries {
			fmt.Fprintf(out, "  %s (mode=%s) %q\n", entry.Attribute, entry.Spec.Mode, entry.Spec.Message)
		}
	}
	return nil
}
