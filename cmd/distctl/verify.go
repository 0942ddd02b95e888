package main

import (
	"github.com/spf13/cobra"

	"github.com/distbuild/distctl/internal/config"
	"github.com/distbuild/distctl/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the products of a previous build",
	Long: `Check that every artifact the full distribution matrix is expected to
produce exists under the products directory, and print a per-file report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger(cmd)
		if err != nil {
			return err
		}

		root, err := loadRoot(cmd)
		if err != nil {
			return err
		}

		settings, err := config.NewSettings(root, config.Options{}, log)
		if err != nil {
			return err
		}

		report := verify.Run(verify.Expected(func() []string {
			return settings.FullMatrix.ExpectedArtifacts(settings.Package.Name, settings.ProductsDir)
		}))
		if err := report.Write(cmd.OutOrStdout()); err != nil {
			return err
		}
		return report.Err()
	},
}
