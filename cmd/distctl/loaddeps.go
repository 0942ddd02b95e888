package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/distbuild/distctl/internal/config"
	"github.com/distbuild/distctl/internal/modules"
)

var loadDepsCmd = &cobra.Command{
	Use:   "load-deps",
	Short: "Load and validate the module descriptor file",
	Long: `Parse the project's module descriptor file and validate it without
building anything. Duplicate names, missing files, and references to
undeclared modules are all reported.`,
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

		path := settings.ModulesFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(settings.SourceDir, path)
		}

		descriptors, err := modules.ParseFile(path)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("MODULE", "FILES", "DEPENDENCIES", "TAGS")
		for _, d := range descriptors {
			err := table.Append([]string{
				d.Name,
				strings.Join(d.Files, ", "),
				strings.Join(d.Dependencies, ", "),
				strings.Join(d.Tags, ", "),
			})
			if err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d modules loaded from %s\n", len(descriptors), path)
		return err
	},
}
