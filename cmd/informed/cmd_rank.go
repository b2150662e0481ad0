package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/informed/internal/analysis"
)

var rankTop int

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank symptoms by mutual information with the diagnosis",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine()
		if err != nil {
			return err
		}
		ranked, err := analysis.MutualInformation(engine)
		if err != nil {
			return err
		}
		if rankTop > 0 && rankTop < len(ranked) {
			ranked = ranked[:rankTop]
		}

		t := newTable()
		t.AppendHeader(table.Row{"Rank", "Symptom", "Info (bits)", "Question"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight},
			{Number: 3, Align: text.AlignRight},
		})
		for i, c := range ranked {
			t.AppendRow(table.Row{i + 1, c.Symptom.ID, fmt.Sprintf("%.4f", c.Gain), truncate(c.Symptom.Question, 60)})
		}
		render(cmd.OutOrStdout(), t)
		return nil
	},
}

func init() {
	rankCmd.Flags().IntVar(&rankTop, "top", 0, "show only the N most informative symptoms")
}
