package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kinetic/internal/fsm"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Definition string    `json:"definition"`
	Valid      bool      `json:"valid"`
	States     int       `json:"states"`
	Inputs     int       `json:"inputs"`
	Outputs    int       `json:"outputs"`
	Problems   []Problem `json:"problems,omitempty"`
}

// Problem is one validation finding
type Problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Text implements Texter
func (r ValidationResult) Text() string {
	var b strings.Builder
	if r.Valid {
		fmt.Fprintf(&b, "✓ %s is valid (%d states, %d inputs, %d outputs)\n",
			r.Definition, r.States, r.Inputs, r.Outputs)
		return b.String()
	}
	fmt.Fprintf(&b, "✗ %s has %d problem(s)\n", r.Definition, len(r.Problems))
	for _, p := range r.Problems {
		fmt.Fprintf(&b, "  [%s] %s\n", p.Code, p.Message)
	}
	return b.String()
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <definition>",
		Short: "Check a machine definition",
		Long: `Check a YAML or CUE machine definition for structural problems.

Reports every problem found: duplicate or unknown states, inputs and
outputs missing from the alphabet, conflicting transitions, malformed
matrix cells, a missing initial state.

Exit codes:
  0 - definition is valid
  1 - definition has problems
  2 - definition could not be read`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	def, err := loadDefinition(f, path)
	if err != nil {
		return err
	}

	result := ValidationResult{
		Definition: path,
		States:     len(def.States),
		Inputs:     len(def.Inputs),
		Outputs:    len(def.Outputs),
	}
	for _, p := range fsm.Problems(def.Validate()) {
		result.Problems = append(result.Problems, Problem{Code: p.Code, Message: p.Message})
	}
	result.Valid = len(result.Problems) == 0

	if !result.Valid {
		msg := fmt.Sprintf("%d problem(s) in %s", len(result.Problems), path)
		if err := f.Error(ErrCodeInvalid, msg, result, nil); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}
	return f.Success(result)
}

// loadDefinition loads a definition, reporting a load failure as a
// command error
func loadDefinition(f *OutputFormatter, path string) (*fsm.Definition, error) {
	def, err := fsm.LoadDefinition(path)
	if err != nil {
		if outErr := f.Error(ErrCodeLoad, err.Error(), nil, nil); outErr != nil {
			return nil, outErr
		}
		return nil, WrapExitError(ExitCommandError, "failed to load definition", err)
	}
	f.VerboseLog("loaded %s: %d states, %d transitions, %d matrix rows",
		path, len(def.States), len(def.Transitions), len(def.Matrix))
	return def, nil
}
