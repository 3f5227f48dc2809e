package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/logger"
)

var importProvenance string

var importCmd = &cobra.Command{
	Use:   "import <file.tsv>",
	Short: "Load imported relations from a tab-separated file",
	Long: `Reads lines of "source<TAB>target<TAB>relation" ('-' for stdin) and stores
them as depth-1 edges. Lines starting with # are ignored. Triples already in
the store are skipped. The database file is created if it does not exist.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)

		var in io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		edges, err := parseRelationTSV(in, importProvenance)
		if err != nil {
			return err
		}

		b, err := OpenBackend(ctx, true)
		if err != nil {
			return err
		}
		defer b.Close()

		n, err := b.ImportEdges(ctx, edges)
		if err != nil {
			return fmt.Errorf("importing relations: %w", err)
		}
		logger.Info("Imported relations", "read", len(edges), "inserted", n)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s of %s relations\n", humanize.Comma(int64(n)), humanize.Comma(int64(len(edges))))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importProvenance, "provenance", "import", "Provenance tag for the imported edges")
	rootCmd.AddCommand(importCmd)
}

// parseRelationTSV reads source, target and relation name columns.
func parseRelationTSV(r io.Reader, provenance string) ([]augment.Edge, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var edges []augment.Edge
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading relations: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 tab-separated fields, got %d", line, len(rec))
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
			if rec[i] == "" {
				return nil, fmt.Errorf("line %d: empty field %d", line, i+1)
			}
		}
		edges = append(edges, augment.Edge{
			Source:     rec[0],
			Target:     rec[1],
			RelName:    rec[2],
			Depth:      1,
			Provenance: provenance,
		})
	}
	return edges, nil
}
