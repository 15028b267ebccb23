package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/querytx/internal/filter"
)

// ValidationResult is the JSON payload of the validate command.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <filter-file>",
		Short: "Check a filter document without translating it",
		Long: `Check that a filter document is well formed: every operator, conjunction
and sort direction is known and every comparison has a subject and a value.

All problems are reported, not just the first. Entities are not resolved, so a
valid filter can still fail to translate.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	log := opts.Logger.With(zap.String("command", "validate"))

	_, f, err := loadFilter(path, log, formatter)
	if err != nil {
		return err
	}

	result := filter.Validate(f)
	log.Info("validated", zap.Bool("valid", result.Valid), zap.Int("problems", len(result.Problems)))

	if !result.Valid {
		return outputProblems(formatter, result.Problems)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintln(formatter.Writer, "✓ Filter valid")
	return nil
}

func outputProblems(formatter *OutputFormatter, problems []string) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d problem(s)", len(problems)))

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Problems: problems},
			Error: &CLIError{
				Code:    ErrCodeInvalid,
				Message: problems[0],
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, p := range problems {
		fmt.Fprintf(formatter.Writer, "  %s\n", p)
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "%d problem(s) found\n", len(problems))
	return failure
}
