package trace_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/kinetic/internal/trace"
)

func TestClock_Monotonic(t *testing.T) {
	c := trace.NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestClock_ResumeAt(t *testing.T) {
	c := trace.NewClockAt(41)
	assert.Equal(t, int64(42), c.Next())
}

func TestClock_Concurrent(t *testing.T) {
	c := trace.NewClock()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Next()
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), c.Current())
}

func TestRecord_String(t *testing.T) {
	tests := []struct {
		name   string
		record trace.Record
		want   string
	}{
		{
			name:   "cross with output",
			record: trace.Record{Seq: 3, Kind: trace.KindCross, Subject: "m", From: "idle", To: "armed", On: "press", Output: "boom"},
			want:   "3 cross m idle -press/boom-> armed",
		},
		{
			name:   "cross without output",
			record: trace.Record{Seq: 4, Kind: trace.KindCross, Subject: "m", From: "a", To: "b", On: "go"},
			want:   "4 cross m a -go-> b",
		},
		{
			name:   "activate",
			record: trace.Record{Seq: 1, Kind: trace.KindActivate, Subject: "m", To: "idle"},
			want:   "1 activate m -> idle",
		},
		{
			name:   "propagate with detail",
			record: trace.Record{Seq: 9, Kind: trace.KindPropagate, Subject: "src", Detail: "visited=2"},
			want:   "9 propagate src (visited=2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.String())
		})
	}
}

func TestMemory_RecordsAndKinds(t *testing.T) {
	m := trace.NewMemory()
	m.Record(trace.Record{Seq: 1, Kind: trace.KindActivate})
	m.Record(trace.Record{Seq: 2, Kind: trace.KindCross})
	m.Record(trace.Record{Seq: 3, Kind: trace.KindCross})

	assert.Len(t, m.Records(), 3)
	assert.Len(t, m.Kinds(trace.KindCross), 2)

	m.Reset()
	assert.Empty(t, m.Records())
}

func TestTee(t *testing.T) {
	a, b := trace.NewMemory(), trace.NewMemory()
	rec := trace.Tee(a, nil, b)
	rec.Record(trace.Record{Seq: 1})

	assert.Len(t, a.Records(), 1)
	assert.Len(t, b.Records(), 1)
}
