package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/lo-sat/internal/factorizer"
	"github.com/operator-framework/lo-sat/pkg/clause"
	"github.com/operator-framework/lo-sat/pkg/config"
	"github.com/operator-framework/lo-sat/pkg/engine"
	"github.com/operator-framework/lo-sat/pkg/formula"
	"github.com/operator-framework/lo-sat/pkg/metrics"
	"github.com/operator-framework/lo-sat/pkg/parse"
	"github.com/operator-framework/lo-sat/pkg/persist"
)

func newSolveCmd() *cobra.Command {
	var (
		inputPath       string
		dimacs          bool
		configPath      string
		mode            string
		sortBySize      bool
		thiefMethod     bool
		exitUponSolving bool
		threads         int
		metricsAddr     string
		dsn             string
		doFactorize     bool
	)

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Decide satisfiability of a CNF formula and report a witness",
		RunE: func(cmd *cobra.Command, args []string) error {
			clauses, err := readClauses(inputPath, dimacs)
			if err != nil {
				return err
			}

			cfg, err := resolveConfig(cmd, configPath, map[string]interface{}{
				"mode":              mode,
				"sort_by_size":      sortBySize,
				"thief_method":      thiefMethod,
				"exit_upon_solving": exitUponSolving,
				"threads":           threads,
			})
			if err != nil {
				return err
			}

			m, err := cfg.ParsedMode()
			if err != nil {
				return err
			}

			rootClauses := clauses
			if doFactorize {
				root := formula.NewRoot(clauses)
				if result, err := factorizer.Preprocess(root); err == nil {
					log.WithField("factorized_number", result.FactorizedNumber).Info("factorizer: recognized Purdom-Sabry input, seeding known bits")
					if result.Node.Terminal {
						reportResult(result.Node.Value, result.Node.EvaluatedVars, engine.Stats{})
						return nil
					}
					rootClauses = result.Node.Formula.Clauses
				} else {
					log.WithError(err).Debug("factorizer: input not in Purdom-Sabry format, exploring unmodified")
				}
			}

			opts := []engine.Option{
				engine.WithMode(m),
				engine.WithSortBySize(cfg.SortBySize),
				engine.WithThiefMethod(cfg.ThiefMethod),
				engine.WithExitUponSolving(cfg.ExitUponSolving),
				engine.WithThreads(cfg.Threads),
			}
			if metricsAddr != "" {
				opts = append(opts, engine.WithMetrics(metrics.New("losat", prometheusRegisterer())))
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.Handler())
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						log.WithError(err).Warn("metrics endpoint stopped")
					}
				}()
			}

			if dsn != "" {
				store, err := persist.Open(cmd.Context(), dsn, "losat_nodes")
				if err != nil {
					log.WithError(err).Warn("persistence disabled: could not connect")
				} else {
					defer store.Close()
					opts = append(opts, engine.WithPersist(store))
				}
			}

			e, err := engine.New(opts...)
			if err != nil {
				return err
			}

			sat, witness, stats, err := e.Solve(context.Background(), rootClauses)
			if err != nil {
				return err
			}

			reportResult(sat, witness, stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "path to the input formula (default: stdin)")
	cmd.Flags().BoolVar(&dimacs, "dimacs", false, "parse input as DIMACS CNF instead of one-line format")
	cmd.Flags().StringVar(&configPath, "config", "", "load run configuration from this YAML file instead of the flags below")
	cmd.Flags().StringVar(&mode, "mode", "LO", "canonicalization mode: NORMAL|LOU|LO|FLO|FLOP")
	cmd.Flags().BoolVar(&sortBySize, "sort-by-size", false, "group clauses by length before ordering")
	cmd.Flags().BoolVar(&thiefMethod, "thief-method", false, "apply the thief clause-ordering heuristic")
	cmd.Flags().BoolVar(&exitUponSolving, "exit-upon-solving", false, "stop as soon as a solution is found")
	cmd.Flags().IntVar(&threads, "threads", 0, "worker pool size (0 = auto)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, expose Prometheus metrics on this address")
	cmd.Flags().StringVar(&dsn, "persist-dsn", "", "if set, persist exploration nodes to this Postgres DSN")
	cmd.Flags().BoolVar(&doFactorize, "factorize", false, "recognize a Purdom-Sabry factorization/multiplication input and seed its known bits before exploring")

	return cmd
}

// reportResult prints the §6 output 3-tuple the same way for both
// the engine's own decision and a factorizer preprocessing pass that
// fully resolved the root before exploration started.
func reportResult(sat bool, witness map[int]bool, stats engine.Stats) {
	if sat {
		fmt.Fprintln(os.Stdout, "SATISFIABLE")
		for v, val := range witness {
			fmt.Fprintf(os.Stdout, "%d=%v\n", v, val)
		}
	} else {
		fmt.Fprintln(os.Stdout, "UNSATISFIABLE")
	}
	fmt.Fprintf(os.Stdout, "unique_descendants=%d redundant_descendants=%d redundant_hits=%d\n",
		stats.Root.UniqueDescendants, stats.Root.RedundantDescendants, stats.Root.RedundantHits)
}

// resolveConfig loads a run Config the way §6 describes: from
// configPath's YAML file when --config is set, otherwise from the
// collected pflag values via config.FromMap.
func resolveConfig(cmd *cobra.Command, configPath string, flagValues map[string]interface{}) (config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.FromMap(flagValues)
}

func readClauses(path string, dimacs bool) ([]clause.Clause, error) {
	var r *os.File
	if path == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	if dimacs {
		return parse.DIMACS(r)
	}
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err != nil {
			break
		}
	}
	return parse.OneLine(string(buf))
}
