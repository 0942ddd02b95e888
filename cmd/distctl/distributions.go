package main

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/distbuild/distctl/internal/dist"
)

var distributionsCmd = &cobra.Command{
	Use:   "distributions [target]",
	Short: "List the configured distribution matrix",
	Long: `Render the distribution matrix as a table. With a target argument,
show that distribution only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := loadRoot(cmd)
		if err != nil {
			return err
		}

		matrix := root.Matrix()
		if len(args) > 0 {
			spec, ok := matrix.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown distribution %q (known: %v)", args[0], matrix.Names())
			}
			matrix = dist.Matrix{spec}
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("NAME", "INCLUDE", "EXCLUDE", "OUTPUT", "BUNDLE")
		for _, spec := range matrix {
			output := "minified"
			if spec.Expanded {
				output = "expanded"
			}
			err := table.Append([]string{
				spec.Name,
				tags(spec.Include),
				tags(spec.Exclude),
				output,
				spec.BundleFile(root.Package.Name),
			})
			if err != nil {
				return err
			}
		}
		return table.Render()
	},
}

func tags(set []string) string {
	if len(set) == 0 {
		return "*"
	}
	return strings.Join(set, ", ")
}
