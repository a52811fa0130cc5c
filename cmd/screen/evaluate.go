package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"cv-screening-backend/internal/screening"
	"cv-screening-backend/pkg/pdftext"
	"cv-screening-backend/pkg/security"

	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	role     string
	jobTitle string
	file     string
	text     string
	timeout  time.Duration
}

func newEvaluateCmd() *cobra.Command {
	opts := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one CV and print the decision as JSON",
		Example: `  screen evaluate --job-title "Shopify Developer" --file cv.pdf
  screen evaluate --role GCMS_LAB_SPECIALIST --text "5 years GC-MS method validation"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.role, "role", "", "Role ID to evaluate against")
	cmd.Flags().StringVar(&opts.jobTitle, "job-title", "", "Job title used to pick the role")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "CV file (PDF or plain text)")
	cmd.Flags().StringVar(&opts.text, "text", "", "CV text")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 20*time.Second, "PDF text extraction timeout")
	cmd.MarkFlagsMutuallyExclusive("role", "job-title")
	cmd.MarkFlagsOneRequired("role", "job-title")
	cmd.MarkFlagsMutuallyExclusive("file", "text")
	cmd.MarkFlagsOneRequired("file", "text")
	return cmd
}

func runEvaluate(cmd *cobra.Command, opts *evaluateOptions) error {
	registry, err := loadRegistry(cmd)
	if err != nil {
		return err
	}

	var (
		evaluator *screening.Evaluator
		ok        bool
	)
	if opts.role != "" {
		evaluator, ok = registry.Role(opts.role)
		if !ok {
			return fmt.Errorf("unknown role %q", opts.role)
		}
	} else {
		evaluator, ok = registry.ForJobTitle(opts.jobTitle)
		if !ok {
			return fmt.Errorf("no role matches job title %q", opts.jobTitle)
		}
	}

	text := opts.text
	if opts.file != "" {
		text, err = readCVText(cmd.Context(), opts.file, opts.timeout)
		if err != nil {
			return err
		}
	}

	decision := evaluator.Evaluate(text)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(decision)
}

// readCVText extracts text from PDFs and reads anything else as plain text.
func readCVText(ctx context.Context, path string, timeout time.Duration) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !security.IsPDF(data) {
		return string(data), nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	text, err := pdftext.New(timeout).ExtractText(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", path, err)
	}
	return text, nil
}

func loadRegistry(cmd *cobra.Command) (*screening.Registry, error) {
	ruleset, _ := cmd.Flags().GetString("ruleset")
	rules, _ := cmd.Flags().GetString("rules")

	registry, err := screening.DefaultRegistry(ruleset)
	if err != nil {
		return nil, err
	}
	if rules != "" {
		if err := registry.LoadRoleFile(rules); err != nil {
			return nil, fmt.Errorf("load %s: %w", rules, err)
		}
	}
	if len(registry.Roles()) == 0 {
		return nil, errors.New("no roles registered")
	}
	return registry, nil
}
