package runloop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kinetic/internal/task"
)

func start(t *testing.T) (*Loop, <-chan error) {
	t.Helper()
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l, done
}

func TestLoop_RunsInOrder(t *testing.T) {
	l, _ := start(t)
	var got []int
	for i := range 5 {
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoop_PostFromLoop(t *testing.T) {
	l, _ := start(t)
	var got []string
	done := make(chan struct{})
	l.Post(func() {
		got = append(got, "outer")
		l.Post(func() {
			got = append(got, "inner")
			close(done)
		})
		got = append(got, "outer-end")
	})
	<-done
	assert.Equal(t, []string{"outer", "outer-end", "inner"}, got)
}

func TestLoop_PanicLoggedAndContinues(t *testing.T) {
	l, _ := start(t)
	l.Post(func() { panic("boom") })
	ran := false
	require.NoError(t, l.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_StopDrainsQueue(t *testing.T) {
	l := New()
	ran := 0
	l.Post(func() { ran++ })
	l.Post(func() { ran++ })
	assert.Equal(t, 2, l.Len())
	l.Stop()
	assert.False(t, l.Post(func() { ran++ }))

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 2, ran)
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrStopped)
}

func TestLoop_ContextCancelled(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
	assert.False(t, l.Post(func() {}))
}

func TestLoop_PostNil(t *testing.T) {
	assert.False(t, New().Post(nil))
}

func TestLoop_WaitEndsOnLoop(t *testing.T) {
	l, _ := start(t)
	ended := make(chan task.State, 1)

	var w *task.Wait
	require.NoError(t, l.Do(context.Background(), func() {
		w = task.NewWait(10*time.Millisecond, task.WithScheduler(l))
		w.SetDelegate(task.DelegateFuncs{
			DidEnd: func(task.Task) { ended <- w.State() },
		})
		w.Start(nil)
	}))

	select {
	case s := <-ended:
		assert.Equal(t, task.Stopped, s)
	case <-time.After(5 * time.Second):
		t.Fatal("wait did not end")
	}
}

func TestTimer_Stop(t *testing.T) {
	l, _ := start(t)
	fired := make(chan struct{}, 1)

	var stopped, again bool
	require.NoError(t, l.Do(context.Background(), func() {
		tm := l.AfterFunc(time.Millisecond, func() { fired <- struct{}{} })
		stopped = tm.Stop()
		again = tm.Stop()
	}))
	assert.True(t, stopped)
	assert.False(t, again)

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTimer_StopAfterFire(t *testing.T) {
	l, _ := start(t)
	fired := make(chan struct{})

	var tm task.Timer
	require.NoError(t, l.Do(context.Background(), func() {
		tm = l.AfterFunc(time.Millisecond, func() { close(fired) })
	}))
	<-fired

	var stopped bool
	require.NoError(t, l.Do(context.Background(), func() { stopped = tm.Stop() }))
	assert.False(t, stopped)
}
