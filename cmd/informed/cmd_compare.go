package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/informed/internal/analysis"
)

var (
	compareTrials int
	compareSeed   uint64
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare greedy question selection with random and frequency ordering",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		p, err := policy()
		if err != nil {
			return err
		}

		opts := analysis.CompareOptions{Trials: compareTrials, Seed: compareSeed, Workers: workers}
		res, err := analysis.Compare(cmd.Context(), engine, p, analysis.DefaultCases(), analysis.DefaultStrategies(opts), opts)
		if err != nil {
			return err
		}

		t := newTable()
		header := table.Row{"Diagnosis"}
		for _, name := range res.Strategies {
			header = append(header, name)
		}
		t.AppendHeader(header)

		for _, c := range res.Cases {
			row := table.Row{c.Target.Name}
			for _, r := range c.Results {
				row = append(row, formatResult(r))
			}
			t.AppendRow(row)
		}

		footer := table.Row{"Average"}
		for _, avg := range res.Averages {
			footer = append(footer, fmt.Sprintf("%.1f", avg))
		}
		t.AppendFooter(footer)

		out := cmd.OutOrStdout()
		render(out, t)
		for j := 1; j < len(res.Strategies); j++ {
			fmt.Fprintf(out, "%s is %.1fx faster than %s\n", res.Strategies[0], res.Speedup(j, 0), res.Strategies[j])
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().IntVar(&compareTrials, "trials", analysis.DefaultTrials, "shuffles per case for the random strategy")
	compareCmd.Flags().Uint64Var(&compareSeed, "seed", analysis.DefaultSeed, "seed for the random strategy")
}

func formatResult(r analysis.Result) string {
	if r.Trials > 1 {
		return fmt.Sprintf("%.1f±%.1f", r.Mean, r.Std)
	}
	return fmt.Sprintf("%.0f", r.Mean)
}
