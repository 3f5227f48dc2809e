package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"smatch/lexgraph/internal/catalog"
)

var (
	queryDepth int
	queryRels  string
	queryJSON  bool
)

var connectedCmd = &cobra.Command{
	Use:   "connected <source> <target>",
	Short: "Check whether target is reachable from source within a depth",
	Long:  "Answers from the closed graph with one indexed lookup. Prints true or false.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		b, err := OpenBackend(ctx, false)
		if err != nil {
			return err
		}
		defer b.Close()

		ok, err := b.IsConnected(ctx, args[0], args[1], queryDepth, parseRelNames(queryRels)...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if queryJSON {
			return json.NewEncoder(out).Encode(map[string]any{
				"source": args[0], "target": args[1], "depth": queryDepth, "connected": ok,
			})
		}
		fmt.Fprintln(out, ok)
		return nil
	},
}

var targetsCmd = &cobra.Command{
	Use:   "targets <source>",
	Short: "List senses reachable from source within a depth",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		b, err := OpenBackend(ctx, false)
		if err != nil {
			return err
		}
		defer b.Close()

		targets, err := b.RelationTargets(ctx, args[0], queryDepth, parseRelNames(queryRels)...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if queryJSON {
			if targets == nil {
				targets = []string{}
			}
			return json.NewEncoder(out).Encode(targets)
		}
		for _, t := range targets {
			fmt.Fprintln(out, t)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{connectedCmd, targetsCmd} {
		c.Flags().IntVar(&queryDepth, "depth", 1, "Maximum path length")
		c.Flags().StringVar(&queryRels, "rel", catalog.Hypernym, "Comma-separated relation names")
		c.Flags().BoolVar(&queryJSON, "json", false, "Output as JSON")
		rootCmd.AddCommand(c)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
