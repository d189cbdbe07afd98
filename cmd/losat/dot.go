package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/operator-framework/lo-sat/pkg/engine"
)

// newDotCmd solves a formula and emits the explored branch tree as
// Graphviz dot source, the supplemented visualization feature
// PatternSolver.py builds with graphviz.Digraph.
func newDotCmd() *cobra.Command {
	var (
		inputPath  string
		dimacs     bool
		configPath string
		mode       string
		threads    int
	)

	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Solve a formula and emit the explored branch tree as Graphviz dot source",
		RunE: func(cmd *cobra.Command, args []string) error {
			clauses, err := readClauses(inputPath, dimacs)
			if err != nil {
				return err
			}

			cfg, err := resolveConfig(cmd, configPath, map[string]interface{}{
				"mode":    mode,
				"threads": threads,
			})
			if err != nil {
				return err
			}

			m, err := cfg.ParsedMode()
			if err != nil {
				return err
			}

			e, err := engine.New(engine.WithMode(m), engine.WithThreads(cfg.Threads))
			if err != nil {
				return err
			}

			sat, _, result, err := e.Solve(cmd.Context(), clauses)
			if err != nil {
				return err
			}

			writeDot(os.Stdout, result, sat)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "path to the input formula (default: stdin)")
	cmd.Flags().BoolVar(&dimacs, "dimacs", false, "parse input as DIMACS CNF instead of one-line format")
	cmd.Flags().StringVar(&configPath, "config", "", "load run configuration from this YAML file instead of the flags below")
	cmd.Flags().StringVar(&mode, "mode", "LO", "canonicalization mode: NORMAL|LOU|LO|FLO|FLOP")
	cmd.Flags().IntVar(&threads, "threads", 0, "worker pool size (0 = auto)")

	return cmd
}

// writeDot renders a node's adjacency graph and per-node subgraph
// stats as Graphviz dot source.
func writeDot(w io.Writer, result engine.Stats, sat bool) {
	fmt.Fprintln(w, "digraph cnftree {")
	fmt.Fprintf(w, "  stats [shape=box, style=dotted, label=%q];\n", fmt.Sprintf("satisfiable=%v", sat))

	for id, children := range result.Graph {
		label := fmt.Sprintf("%x", id[:4])
		if t, ok := result.PerNode[id]; ok {
			label = fmt.Sprintf("%s\\nunique=%d redundant=%d hits=%d", label, t.UniqueDescendants, t.RedundantDescendants, t.RedundantHits)
		}
		fmt.Fprintf(w, "  %q [label=%q];\n", hex(id), label)
		for _, child := range children {
			fmt.Fprintf(w, "  %q -> %q;\n", hex(id), hex(child))
		}
	}

	fmt.Fprintln(w, "}")
}

func hex(id [20]byte) string {
	return fmt.Sprintf("%x", id)
}
