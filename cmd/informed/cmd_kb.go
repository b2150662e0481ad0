package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var kbOutput string

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Knowledge base utilities",
}

var kbExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the knowledge base as YAML",
	Long:  "Write the active knowledge base (built-in or --kb) as YAML, suitable for\nKNOWLEDGE_BASE_PATH or editing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		kb, err := loadKnowledge()
		if err != nil {
			return err
		}
		if kbOutput == "" || kbOutput == "-" {
			return kb.WriteYAML(cmd.OutOrStdout())
		}

		f, err := os.Create(kbOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", kbOutput, err)
		}
		if err := kb.WriteYAML(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d diagnoses x %d symptoms to %s\n", kb.NumDiagnoses(), kb.NumSymptoms(), kbOutput)
		return nil
	},
}

func init() {
	kbExportCmd.Flags().StringVarP(&kbOutput, "output", "o", "", "output file (default stdout)")
	kbCmd.AddCommand(kbExportCmd)
}
