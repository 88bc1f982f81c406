package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler_FiresInDueOrder(t *testing.T) {
	s := NewManualScheduler()
	var got []string
	s.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	s.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	s.AfterFunc(100*time.Millisecond, func() { got = append(got, "b") })

	s.Advance(99 * time.Millisecond)
	assert.Empty(t, got)
	assert.Equal(t, 3, s.Pending())

	s.Advance(time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)

	s.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 0, s.Pending())
}

func TestManualScheduler_NowDuringCallback(t *testing.T) {
	s := NewManualScheduler()
	start := s.Now()
	var at time.Time
	s.AfterFunc(250*time.Millisecond, func() { at = s.Now() })

	s.Advance(time.Second)
	assert.Equal(t, 250*time.Millisecond, at.Sub(start))
	assert.Equal(t, time.Second, s.Now().Sub(start))
}

func TestManualScheduler_Stop(t *testing.T) {
	s := NewManualScheduler()
	fired := false
	timer := s.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "double stop is a no-op")

	s.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManualScheduler_StopAfterFire(t *testing.T) {
	s := NewManualScheduler()
	timer := s.AfterFunc(time.Second, func() {})
	s.Advance(time.Second)
	assert.False(t, timer.Stop())
}

func TestManualScheduler_TimerCreatedByCallback(t *testing.T) {
	s := NewManualScheduler()
	var got []string
	s.AfterFunc(100*time.Millisecond, func() {
		got = append(got, "first")
		s.AfterFunc(100*time.Millisecond, func() { got = append(got, "second") })
	})

	s.Advance(time.Second)
	assert.Equal(t, []string{"first", "second"}, got)
}
