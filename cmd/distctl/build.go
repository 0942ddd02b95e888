package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/distbuild/distctl/internal/config"
	"github.com/distbuild/distctl/internal/pipeline"
	"github.com/distbuild/distctl/internal/progress"
)

var buildCmd = &cobra.Command{
	Use:   "build [target]",
	Short: "Run the full build pipeline for a target",
	Long: `Build the named target: "all" (the default) builds every configured
distribution and packages the staged tree, a distribution name builds that
distribution alone, and "custom" builds a one-off distribution described by
--name, --include and --exclude.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args, false)
	},
}

var buildDistsCmd = &cobra.Command{
	Use:   "build-dists [target]",
	Short: "Build distribution bundles only",
	Long:  `Build the target's bundles without packaging or verifying the output.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args, true)
	},
}

func init() {
	addCustomFlags(buildCmd.Flags())
	addCustomFlags(buildDistsCmd.Flags())
}

// addCustomFlags registers the flags that shape the "custom" target. They are
// ignored for every other target.
func addCustomFlags(fs *pflag.FlagSet) {
	fs.String("name", "", "distribution name for the custom target")
	fs.StringSlice("include", nil, "tags or module names the custom target includes")
	fs.StringSlice("exclude", nil, "tags or module names the custom target excludes")
	fs.Bool("source", false, "emit the custom bundle expanded instead of minified")
}

func runBuild(cmd *cobra.Command, args []string, bundlesOnly bool) error {
	opts, err := buildOptions(cmd, args)
	if err != nil {
		return err
	}
	return runTarget(cmd, opts, bundlesOnly)
}

func runTarget(cmd *cobra.Command, opts config.Options, bundlesOnly bool) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}

	root, err := loadRoot(cmd)
	if err != nil {
		return err
	}

	settings, err := config.NewSettings(root, opts, log)
	if err != nil {
		return err
	}
	if bundlesOnly {
		settings.DoPackage = false
		settings.DoVerify = false
	}

	return pipeline.New(settings, log).
		WithProgress(progress.New(len(settings.Matrix), "building "+settings.Target)).
		Run(cmd.Context())
}

func buildOptions(cmd *cobra.Command, args []string) (config.Options, error) {
	var opts config.Options
	if len(args) > 0 {
		opts.Target = args[0]
	}

	var err error
	if opts.Name, err = cmd.Flags().GetString("name"); err != nil {
		return opts, err
	}
	if opts.Include, err = cmd.Flags().GetStringSlice("include"); err != nil {
		return opts, err
	}
	if opts.Exclude, err = cmd.Flags().GetStringSlice("exclude"); err != nil {
		return opts, err
	}
	if opts.Source, err = cmd.Flags().GetBool("source"); err != nil {
		return opts, err
	}
	return opts, nil
}
