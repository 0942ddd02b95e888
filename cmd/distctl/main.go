package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/distbuild/distctl/internal/config"
	"github.com/distbuild/distctl/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "distctl",
	Short: "Distribution build orchestrator",
	Long: `distctl resolves module dependency closures, concatenates and
minifies distribution bundles, packages the staged tree, and verifies
that every expected artifact was produced.

Run without arguments it builds the full distribution matrix.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Bare invocation builds everything.
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTarget(cmd, config.Options{Target: config.TargetAll}, false)
	},
}

func main() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(buildDistsCmd)
	rootCmd.AddCommand(distributionsCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(loadDepsCmd)

	rootCmd.PersistentFlags().StringArrayP("config", "c", []string{"distctl.yaml"}, "project configuration file (repeatable, merged in order)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadRoot merges the configured project files and decodes them. Later files
// override earlier ones.
func loadRoot(cmd *cobra.Command) (*config.Root, error) {
	files, err := cmd.Flags().GetStringArray("config")
	if err != nil {
		return nil, err
	}

	bs, err := config.Merge(files, false)
	if err != nil {
		return nil, err
	}
	return config.Parse(bs)
}

func newLogger(cmd *cobra.Command) (*logging.Logger, error) {
	verbosity, err := cmd.Flags().GetCount("verbose")
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(logging.Config{Level: logging.LevelInfo + verbosity}), nil
}
