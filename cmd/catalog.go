package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	catalogJSON bool
	catalogYAML bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the active relation catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := LoadCatalog()
		if err != nil {
			return err
		}
		f := cat.ToFile()
		out := cmd.OutOrStdout()

		switch {
		case catalogJSON:
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(f)
		case catalogYAML:
			enc := yaml.NewEncoder(out)
			if err := enc.Encode(f); err != nil {
				return err
			}
			return enc.Close()
		}

		fmt.Fprintln(out, "\n  CANONICAL RELATIONS")
		fmt.Fprintln(out, "  ────────────────────────────────────────")
		for _, c := range f.Canonical {
			fmt.Fprintf(out, "  %-20s %s\n", c.Name, c.Type)
		}
		fmt.Fprintln(out, "\n  INVERSE PAIRS")
		fmt.Fprintln(out, "  ────────────────────────────────────────")
		for _, p := range f.Inverses {
			fmt.Fprintf(out, "  %-20s <-> %s\n", p[0], p[1])
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Output as JSON")
	catalogCmd.Flags().BoolVar(&catalogYAML, "yaml", false, "Output as a loadable YAML catalog")
	rootCmd.AddCommand(catalogCmd)
}
