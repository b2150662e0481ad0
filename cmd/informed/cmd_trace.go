package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/informed/internal/analysis"
)

var (
	traceYes []string
	traceNo  []string
)

var traceCmd = &cobra.Command{
	Use:   "trace <diagnosis-id>",
	Short: "Simulate a greedy session for a patient with the given diagnosis",
	Long: "Simulate a greedy session. Symptoms named with --yes/--no are answered as\n" +
		"given; the rest get the answer the diagnosis most likely produces.\n" +
		"Without overrides the hallmark presentation of the diagnosis is used when known.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		p, err := policy()
		if err != nil {
			return err
		}

		c := traceCase(args[0])
		path, err := analysis.Trace(engine, p, c)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		t := newTable()
		t.SetTitle("Simulated session: %s", path.Target.Name)
		t.AppendHeader(table.Row{"Q#", "Question", "Answer", "IG", "Entropy", "Reduced by"})
		t.AppendRow(table.Row{0, "(initial state)", "", "", fmt.Sprintf("%.3f", path.InitialEntropy), ""})
		for _, s := range path.Steps {
			answer := "No"
			if s.Answer {
				answer = "Yes"
			}
			t.AppendRow(table.Row{
				s.Number,
				truncate(s.Symptom.ID+" "+s.Symptom.Question, 50),
				answer,
				fmt.Sprintf("%.3f", s.Gain),
				fmt.Sprintf("%.3f", s.EntropyAfter),
				fmt.Sprintf("%.3f", s.Reduction()),
			})
		}
		render(out, t)

		fmt.Fprintf(out, "Result: %s (%.1f%%) after %d questions, %s\n",
			path.Leading.Name, path.Confidence*100, len(path.Steps), path.Reason)
		return nil
	},
}

func init() {
	traceCmd.Flags().StringSliceVar(&traceYes, "yes", nil, "symptoms answered yes")
	traceCmd.Flags().StringSliceVar(&traceNo, "no", nil, "symptoms answered no")
}

func traceCase(diagnosisID string) analysis.Case {
	c := analysis.Case{Diagnosis: diagnosisID, Overrides: map[string]bool{}}
	if len(traceYes) == 0 && len(traceNo) == 0 {
		for _, dc := range analysis.DefaultCases() {
			if dc.Diagnosis == diagnosisID {
				return dc
			}
		}
	}
	for _, id := range traceYes {
		c.Overrides[id] = true
	}
	for _, id := range traceNo {
		c.Overrides[id] = false
	}
	return c
}
