package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kinetic/internal/store"
	"github.com/roach88/kinetic/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Subject  string // optional - filter to one machine or graph
	Kind     string // optional - filter to one record kind
}

// TraceResult holds the journaled records matching the filters.
type TraceResult struct {
	Subjects []string       `json:"subjects"`
	Records  []trace.Record `json:"records"`
	Stats    TraceStats     `json:"stats"`
}

// TraceStats counts records per kind
type TraceStats struct {
	Total      int `json:"total"`
	Activates  int `json:"activates"`
	Crossings  int `json:"crossings"`
	Clears     int `json:"clears"`
	Propagates int `json:"propagates"`
}

// Text implements Texter
func (r TraceResult) Text() string {
	if len(r.Records) == 0 {
		return "No records found.\n"
	}
	var b strings.Builder
	for _, rec := range r.Records {
		fmt.Fprintln(&b, rec)
	}
	fmt.Fprintf(&b, "\n%d record(s) from %d subject(s): %d activate, %d cross, %d clear, %d propagate\n",
		r.Stats.Total, len(r.Subjects), r.Stats.Activates, r.Stats.Crossings,
		r.Stats.Clears, r.Stats.Propagates)
	return b.String()
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print journaled trace records",
		Long: `Print the trace records journaled by run or test --db, in sequence
order, optionally limited to one subject or one record kind.

Examples:
  kinetic trace --db ./kinetic.db
  kinetic trace --db ./kinetic.db --subject door
  kinetic trace --db ./kinetic.db --kind cross --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Subject, "subject", "", "only records of this subject")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "only records of this kind (activate|cross|clear|propagate)")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	kind := trace.Kind(opts.Kind)
	switch kind {
	case "", trace.KindActivate, trace.KindCross, trace.KindClear, trace.KindPropagate:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown record kind %q", opts.Kind))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var records []trace.Record
	switch {
	case opts.Subject != "":
		records, err = st.ReadRecords(ctx, opts.Subject)
	case kind != "":
		records, err = st.ReadKind(ctx, kind)
	default:
		records, err = st.ReadAll(ctx)
	}
	if err != nil {
		if outErr := f.Error(ErrCodeDatabase, err.Error(), nil, nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := TraceResult{Subjects: []string{}, Records: []trace.Record{}}
	seen := map[string]bool{}
	for _, r := range records {
		if kind != "" && r.Kind != kind {
			continue
		}
		result.Records = append(result.Records, r)
		if !seen[r.Subject] {
			seen[r.Subject] = true
			result.Subjects = append(result.Subjects, r.Subject)
		}
		result.Stats.Total++
		switch r.Kind {
		case trace.KindActivate:
			result.Stats.Activates++
		case trace.KindCross:
			result.Stats.Crossings++
		case trace.KindClear:
			result.Stats.Clears++
		case trace.KindPropagate:
			result.Stats.Propagates++
		}
	}
	return f.Success(result)
}
