package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/kinetic/internal/trace"
)

const selectRecords = `
	SELECT subject, seq, kind, from_state, to_state, input, output, detail
	FROM records
`

// ReadRecords returns the records of one subject in seq order.
//
// Returns an empty slice (not nil) if the subject has no records.
func (s *Store) ReadRecords(ctx context.Context, subject string) ([]trace.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords+`
		WHERE subject = ?
		ORDER BY seq ASC
	`, subject)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return scanRecords(rows)
}

// ReadAll returns every record in seq order, ties broken by subject.
//
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ReadAll(ctx context.Context) ([]trace.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords+`
		ORDER BY seq ASC, subject COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return scanRecords(rows)
}

// ReadKind returns every record of one kind in seq order
func (s *Store) ReadKind(ctx context.Context, kind trace.Kind) ([]trace.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords+`
		WHERE kind = ?
		ORDER BY seq ASC, subject COLLATE BINARY ASC
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return scanRecords(rows)
}

// Subjects returns the distinct subjects in the journal, sorted
func (s *Store) Subjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT subject FROM records
		ORDER BY subject COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	subjects := []string{}
	for rows.Next() {
		var subject string
		if err := rows.Scan(&subject); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}
	return subjects, nil
}

// MaxSeq returns the highest seq journaled, 0 when empty. Pass it to
// trace.NewClockAt to continue numbering after the journal
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM records`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query max seq: %w", err)
	}
	return seq.Int64, nil
}

func scanRecords(rows *sql.Rows) ([]trace.Record, error) {
	defer rows.Close()

	records := []trace.Record{}
	for rows.Next() {
		var r trace.Record
		var kind string
		if err := rows.Scan(
			&r.Subject, &r.Seq, &kind,
			&r.From, &r.To, &r.On, &r.Output, &r.Detail,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Kind = trace.Kind(kind)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
