package main

import (
	"fmt"
	"os"

	"github.com/brettbedarf/previewfs/config"
	"github.com/brettbedarf/previewfs/internal/util"
	"github.com/spf13/cobra"
)

// app carries the configuration resolved before any subcommand runs
type app struct {
	configPath string
	verbose    int
	cfg        *config.Config
}

// loadConfig layers defaults, the config file, the environment (and .env)
// and finally command line flags
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg := config.NewDefaultConfig()
	if a.configPath != "" {
		override, err := config.LoadConfigOverrideFile(a.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", a.configPath, err)
		}
		cfg.Merge(override)
	}

	env, err := config.LoadEnvOverride()
	if err != nil {
		return err
	}
	cfg.Merge(env)

	if cmd.Flags().Changed("verbose") {
		cfg.Merge(&config.ConfigOverride{LogLvl: &a.verbose})
	}

	a.cfg = cfg
	util.InitializeLogger(cfg.LogLvl)
	return nil
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "previewfs",
		Short: "Live component previews for an in-memory project tree",
		Long: `previewfs keeps a React project in an in-memory file tree and turns it into a
self-contained preview page: sources are compiled with esbuild, imports are
resolved to an import map, and the page is rebuilt whenever the tree changes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (.yaml, .yml or .json)")
	cmd.PersistentFlags().IntVarP(&a.verbose, "verbose", "v", config.InfoVerbose,
		"log verbosity between 1 (error) and 5 (trace)")

	cmd.AddCommand(
		newBuildCommand(a),
		newServeCommand(a),
		newMountCommand(a),
		newApplyCommand(a),
		newVersionCommand(),
	)
	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "previewfs version %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
