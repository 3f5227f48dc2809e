package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"smatch/lexgraph/internal/augment"
	"smatch/lexgraph/internal/graph"
)

var (
	analyzeJSON          bool
	analyzeCanonicalOnly bool
	analyzeTopN          int
	analyzeHubThreshold  int
	analyzeSkipIntegrity bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the relation graph: topology, relations, depths, integrity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		cat, err := LoadCatalog()
		if err != nil {
			return err
		}
		b, err := OpenBackend(ctx, false)
		if err != nil {
			return err
		}
		defer b.Close()

		view := cat
		if !analyzeCanonicalOnly {
			view = nil
		}
		snap, err := graph.SnapshotFromReader(ctx, b, view)
		if err != nil {
			return fmt.Errorf("loading graph: %w", err)
		}

		config := &graph.AnalyzerConfig{
			HubThreshold: analyzeHubThreshold,
			TopN:         analyzeTopN,
			InferredTag:  augment.DefaultProvenance,
			Catalog:      cat,
		}
		if analyzeSkipIntegrity {
			config.Catalog = nil
		}

		report := graph.Analyze(snap, config)

		out := cmd.OutOrStdout()
		if analyzeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printHumanReadable(out, report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeCanonicalOnly, "canonical-only", false, "Only consider edges of canonical relations")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top-n", 10, "Number of top items to show per section")
	analyzeCmd.Flags().IntVar(&analyzeHubThreshold, "hub-threshold", 15, "Minimum degree to consider a sense a hub")
	analyzeCmd.Flags().BoolVar(&analyzeSkipIntegrity, "skip-integrity", false, "Skip the missing-inverse and missing-closure checks")
	rootCmd.AddCommand(analyzeCmd)
}

func printHumanReadable(w io.Writer, report *graph.AnalysisReport) {
	// Topology
	t := report.Topology
	fmt.Fprintln(w, "\n  TOPOLOGY")
	fmt.Fprintln(w, "  ────────────────────────────────────────")
	fmt.Fprintf(w, "  Senses: %s  Edges: %s  Components: %s\n",
		humanize.Comma(int64(t.TotalNodes)), humanize.Comma(int64(t.TotalEdges)), humanize.Comma(int64(t.NumComponents)))
	fmt.Fprintf(w, "  Largest component: %d  Smallest: %d  Self-loops: %d\n", t.LargestComponent, t.SmallestComponent, t.SelfLoops)

	if t.RootCount > 0 {
		fmt.Fprintf(w, "  Roots: %d senses without outgoing relations\n", t.RootCount)
		limit := min(5, len(t.RootIDs))
		for _, id := range t.RootIDs[:limit] {
			fmt.Fprintf(w, "    - %s\n", truncTitle(id, 50))
		}
		if t.RootCount > limit {
			fmt.Fprintf(w, "    ... and %d more\n", t.RootCount-limit)
		}
	}

	// Degree distribution
	fmt.Fprintln(w, "\n  Degree distribution:")
	for _, b := range t.DegreeHistogram {
		if b.Count > 0 {
			fmt.Fprintf(w, "    %5s: %4d  %s\n", b.Label, b.Count, logBar(b.Count))
		}
	}

	// Hubs
	if len(t.Hubs) > 0 {
		fmt.Fprintln(w, "\n  Top hubs (degree > threshold):")
		for _, hub := range t.Hubs {
			fmt.Fprintf(w, "    %s degree=%d (in=%d, out=%d)\n",
				truncTitle(hub.ID, 40), hub.Degree, hub.InDegree, hub.OutDegree)
		}
	}

	// Relations
	r := report.Relations
	fmt.Fprintln(w, "\n  RELATIONS")
	fmt.Fprintln(w, "  ────────────────────────────────────────")
	for _, rc := range r.Relations {
		fmt.Fprintf(w, "  %-20s %10s  max depth %d\n", rc.RelName, humanize.Comma(int64(rc.Edges)), rc.MaxDepth)
	}
	fmt.Fprintln(w, "\n  Depth distribution:")
	for _, d := range r.Depths {
		fmt.Fprintf(w, "    %10s: %8s  %s\n", graph.DepthLabel(d.Depth), humanize.Comma(int64(d.Count)), logBar(d.Count))
	}
	fmt.Fprintf(w, "\n  Imported: %s  Inferred: %s\n", humanize.Comma(int64(r.Imported)), humanize.Comma(int64(r.Inferred)))

	// Integrity
	if in := report.Integrity; in != nil {
		fmt.Fprintln(w, "\n  INTEGRITY")
		fmt.Fprintln(w, "  ────────────────────────────────────────")
		if in.InverseGaps == 0 && in.ClosureGaps == 0 {
			fmt.Fprintln(w, "  Graph is normalized and closed")
		} else {
			fmt.Fprintf(w, "  Missing inverses: %s  Missing transitive edges: %s\n",
				humanize.Comma(int64(in.InverseGaps)), humanize.Comma(int64(in.ClosureGaps)))
			fmt.Fprintln(w, "  Run `lexgraph augment` to fill them. Examples:")
			for _, tr := range in.Examples[:min(10, len(in.Examples))] {
				fmt.Fprintf(w, "    %s\n", tr)
			}
		}
	}

	fmt.Fprintln(w)
}

func logBar(n int) string {
	width := int(math.Log2(float64(n))) + 2
	if width < 1 {
		width = 1
	}
	return strings.Repeat("=", width)
}

func truncTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Find a safe UTF-8 boundary
	truncated := s[:max]
	for len(truncated) > 0 && truncated[len(truncated)-1]>>6 == 2 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "..."
}
