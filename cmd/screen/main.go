// Package main implements the screen CLI, which scores CV text against the
// configured role rules without running the API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "screen",
		Short:         "Score CVs against role rules offline",
		Long:          "screen runs the same rule-based evaluators as the API on local PDF or text files, for tuning role rule files.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("ruleset", envOr("SHOPIFY_RULESET", "strict"), "Shopify ruleset variant (strict or legacy)")
	root.PersistentFlags().String("rules", os.Getenv("ROLE_RULES_FILE"), "Extra role rule file (JSON)")

	root.AddCommand(newEvaluateCmd(), newRolesCmd())
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
