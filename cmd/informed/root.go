package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/informed/internal/buildconfig"
	"github.com/Harshitk-cp/informed/internal/inference"
	"github.com/Harshitk-cp/informed/internal/knowledge"
	"github.com/Harshitk-cp/informed/internal/service"
)

var (
	kbPath    string
	threshold float64
	workers   int
	markdown  bool
)

var rootCmd = &cobra.Command{
	Use:   "informed",
	Short: "Information-theoretic headache diagnosis toolkit",
	Long: "informed ranks symptom questions by expected information gain and\n" +
		"simulates diagnostic sessions against a knowledge base.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&kbPath, "kb", "", "YAML knowledge base (default: built-in reference)")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", service.DefaultConfidenceThreshold, "confidence that ends a session")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 1, "goroutines used to evaluate candidate questions")
	rootCmd.PersistentFlags().BoolVar(&markdown, "markdown", false, "render tables as Markdown")

	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(kbCmd)
	rootCmd.Version = buildconfig.Get().String()
}

func loadKnowledge() (*knowledge.Base, error) {
	if kbPath == "" {
		return knowledge.Reference(), nil
	}
	return knowledge.LoadFile(kbPath)
}

func loadEngine() (*inference.Engine, error) {
	kb, err := loadKnowledge()
	if err != nil {
		return nil, err
	}
	return inference.New(kb, inference.WithParallelism(workers)), nil
}

func policy() (service.Policy, error) {
	if threshold <= 0 || threshold > 1 {
		return service.Policy{}, fmt.Errorf("--threshold must be in (0, 1], got %v", threshold)
	}
	return service.Policy{Threshold: threshold}, nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return t
}

func render(w io.Writer, t table.Writer) {
	if markdown {
		fmt.Fprintln(w, t.RenderMarkdown())
		return
	}
	fmt.Fprintln(w, t.Render())
}

// truncate shortens s to n display columns, counting runes rather than bytes.
func truncate(s string, n int) string {
	return text.Snip(s, n, "...")
}
