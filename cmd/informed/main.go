// informed runs offline analyses of the diagnostic engine: symptom ranking,
// simulated sessions and strategy comparisons.
//
// Usage:
//
//	informed rank [--top=N]
//	informed trace <diagnosis-id> [--yes=S1,S2] [--no=S3]
//	informed compare [--trials=N] [--seed=N]
//	informed kb export [-o file]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
