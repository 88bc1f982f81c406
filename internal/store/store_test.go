package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kinetic/internal/fsm"
	"github.com/roach88/kinetic/internal/registry"
	"github.com/roach88/kinetic/internal/trace"
)

// createTestStore creates a new store in a temp dir for testing
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func cross(subject string, seq int64, from, to, on string) trace.Record {
	return trace.Record{
		Seq: seq, Kind: trace.KindCross, Subject: subject,
		From: from, To: to, On: on,
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.WriteRecord(context.Background(), cross("m", int64(i+1), "a", "b", "go")))
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	rs, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, rs, 3)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_MigratesOldJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("DROP INDEX idx_records_kind")
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 0")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.verifyPragma("user_version", "1"))

	var n int
	require.NoError(t, s.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_records_kind'`,
	).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestClose_Nil(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())
}

func TestWriteRecord_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	r := cross("m", 1, "idle", "armed", "press")

	require.NoError(t, s.WriteRecord(ctx, r))
	require.NoError(t, s.WriteRecord(ctx, r))

	rs, err := s.ReadRecords(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, []trace.Record{r}, rs)
}

func TestWriteRecords_Batch(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rs := []trace.Record{
		{Seq: 1, Kind: trace.KindActivate, Subject: "m", To: "idle", Output: "hello"},
		cross("m", 2, "idle", "armed", "press"),
		{Seq: 3, Kind: trace.KindPropagate, Subject: "g", From: "start", Detail: "2 writes"},
	}
	require.NoError(t, s.WriteRecords(ctx, rs))

	all, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, rs, all)

	props, err := s.ReadKind(ctx, trace.KindPropagate)
	require.NoError(t, err)
	assert.Equal(t, rs[2:], props)
}

func TestReadAll_OrderedBySeqThenSubject(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRecords(ctx, []trace.Record{
		cross("b", 2, "x", "y", "go"),
		cross("b", 1, "x", "y", "go"),
		cross("a", 2, "x", "y", "go"),
	}))

	rs, err := s.ReadAll(ctx)
	require.NoError(t, err)
	var keys []string
	for _, r := range rs {
		keys = append(keys, fmt.Sprintf("%s%d", r.Subject, r.Seq))
	}
	assert.Equal(t, []string{"b1", "a2", "b2"}, keys)
}

func TestRead_Empty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rs, err := s.ReadRecords(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, rs)
	assert.Empty(t, rs)

	subjects, err := s.Subjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, subjects)

	seq, err := s.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Zero(t, seq)
}

func TestSubjectsAndMaxSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRecords(ctx, []trace.Record{
		cross("m2", 4, "x", "y", "go"),
		cross("m1", 7, "x", "y", "go"),
	}))

	subjects, err := s.Subjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, subjects)

	seq, err := s.MaxSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
	assert.Equal(t, int64(8), trace.NewClockAt(seq).Next())
}

func TestRecorder_JournalsMachine(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	m := fsm.New("owner",
		fsm.WithID("switch"),
		fsm.WithRegistry(registry.New()),
		fsm.WithRecorder(s.Recorder(ctx)),
	)
	m.InitWithData(
		[]string{"idle", "armed"},
		[]fsm.Lexeme{"press"},
		nil,
		[]fsm.Transition{{From: "idle", To: "armed", On: "press"}},
	)
	m.SetInitialState("idle")
	m.Activate()
	m.Notify("press", nil)

	rs, err := s.ReadRecords(ctx, "switch")
	require.NoError(t, err)
	var lines []string
	for _, r := range rs {
		lines = append(lines, r.String())
	}
	assert.Equal(t, []string{
		"1 activate switch -> idle",
		"2 cross switch idle -press-> armed",
	}, lines)
}

func TestRecorder_LogsErrors(t *testing.T) {
	s := createTestStore(t)
	rec := s.Recorder(context.Background())
	require.NoError(t, s.Close())

	assert.NotPanics(t, func() { rec.Record(cross("m", 1, "a", "b", "go")) })
}
