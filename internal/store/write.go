package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/kinetic/internal/log"
	"github.com/roach88/kinetic/internal/trace"
)

const insertRecord = `
	INSERT INTO records
	(subject, seq, kind, from_state, to_state, input, output, detail)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(subject, seq) DO NOTHING
`

// WriteRecord appends a record to the journal.
// Uses ON CONFLICT DO NOTHING for idempotency - a record already journaled
// under the same (subject, seq) is silently ignored.
func (s *Store) WriteRecord(ctx context.Context, r trace.Record) error {
	_, err := s.db.ExecContext(ctx, insertRecord, recordArgs(r)...)
	if err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// WriteRecords appends records in one transaction
func (s *Store) WriteRecords(ctx context.Context, rs []trace.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertRecord)
	if err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	defer stmt.Close()

	for _, r := range rs {
		if _, err := stmt.ExecContext(ctx, recordArgs(r)...); err != nil {
			return fmt.Errorf("write record %s/%d: %w", r.Subject, r.Seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// Recorder returns a trace.Recorder journaling every record it receives.
// Write errors are logged, never returned to the engine
func (s *Store) Recorder(ctx context.Context) trace.Recorder {
	return trace.RecorderFunc(func(r trace.Record) {
		if err := s.WriteRecord(ctx, r); err != nil {
			slog.Error("journal write failed",
				slog.String("subject", r.Subject),
				slog.Int64("seq", r.Seq),
				log.Error(err),
			)
		}
	})
}

func recordArgs(r trace.Record) []any {
	return []any{
		r.Subject, r.Seq, string(r.Kind),
		r.From, r.To, r.On, r.Output, r.Detail,
	}
}
