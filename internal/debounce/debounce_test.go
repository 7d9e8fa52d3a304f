package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBurstCollapsesToLastCall(t *testing.T) {
	mock := clock.NewMock()
	d := New(mock, 500*time.Millisecond)

	var last atomic.Int64
	var runs atomic.Int32
	for i := int64(1); i <= 3; i++ {
		v := i
		d.Trigger(func() {
			last.Store(v)
			runs.Add(1)
		})
		mock.Add(100 * time.Millisecond)
	}

	if runs.Load() != 0 {
		t.Fatalf("nothing should run inside the quiet period")
	}

	mock.Add(500 * time.Millisecond)
	waitFor(t, func() bool { return runs.Load() == 1 })

	if last.Load() != 3 {
		t.Fatalf("expected last trigger to win, got %d", last.Load())
	}
	if d.Pending() {
		t.Fatalf("expected nothing pending after run")
	}
}

func TestCancelPreventsRun(t *testing.T) {
	mock := clock.NewMock()
	d := New(mock, 500*time.Millisecond)

	var runs atomic.Int32
	d.Trigger(func() { runs.Add(1) })

	if !d.Cancel() {
		t.Fatalf("expected cancel to report a pending call")
	}
	if d.Cancel() {
		t.Fatalf("second cancel should report nothing pending")
	}

	mock.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	if runs.Load() != 0 {
		t.Fatalf("cancelled call ran %d times", runs.Load())
	}
}

func TestFlushRunsImmediately(t *testing.T) {
	mock := clock.NewMock()
	d := New(mock, 500*time.Millisecond)

	var runs atomic.Int32
	d.Trigger(func() { runs.Add(1) })

	if !d.Flush() {
		t.Fatalf("expected flush to run the pending call")
	}
	if runs.Load() != 1 {
		t.Fatalf("expected one run, got %d", runs.Load())
	}

	mock.Add(time.Second)
	time.Sleep(10 * time.Millisecond)
	if runs.Load() != 1 {
		t.Fatalf("timer should not run a flushed call again, got %d", runs.Load())
	}
}
