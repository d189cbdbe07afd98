package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/operator-framework/lo-sat/pkg/formula"
)

// newParseCmd parses an input formula and prints its canonical wire
// form, for sanity-checking what a run of `solve` actually sees after
// LO canonicalization.
func newParseCmd() *cobra.Command {
	var (
		inputPath string
		dimacs    bool
		mode      string
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a formula and print its canonical wire form",
		RunE: func(cmd *cobra.Command, args []string) error {
			clauses, err := readClauses(inputPath, dimacs)
			if err != nil {
				return err
			}

			m, ok := formula.ParseMode(mode)
			if !ok {
				return fmt.Errorf("unknown mode %q", mode)
			}

			root := formula.NewRoot(clauses)
			if root.IsTrue() {
				fmt.Fprintln(os.Stdout, "T")
				return nil
			}
			if root.IsFalse() {
				fmt.Fprintln(os.Stdout, "F")
				return nil
			}

			root.Formula.ToLOCondition(m, false, false)
			text, err := root.Formula.MarshalText()
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, string(text))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "path to the input formula (default: stdin)")
	cmd.Flags().BoolVar(&dimacs, "dimacs", false, "parse input as DIMACS CNF instead of one-line format")
	cmd.Flags().StringVar(&mode, "mode", "LO", "canonicalization mode: NORMAL|LOU|LO|FLO|FLOP")

	return cmd
}
