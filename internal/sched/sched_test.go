package sched

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestAfterRunsInOrder(t *testing.T) {
	l := NewLoop()
	l.Start()
	defer l.Stop()

	got := make(chan int, 3)
	l.After(60*time.Millisecond, func() { got <- 3 })
	l.After(20*time.Millisecond, func() { got <- 1 })
	l.After(40*time.Millisecond, func() { got <- 2 })

	for want := 1; want <= 3; want++ {
		select {
		case v := <-got:
			if v != want {
				t.Fatalf("task order: got %d, want %d", v, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for task %d", want)
		}
	}
}

func TestCallIsSynchronous(t *testing.T) {
	l := NewLoop()
	l.Start()
	defer l.Stop()

	var n int
	if err := l.Call(func() { n = 42 }); err != nil {
		t.Fatalf("call: %v", err)
	}
	if n != 42 {
		t.Fatalf("call did not complete before returning: n=%d", n)
	}
}

func TestCallAfterStopReturnsErrStopped(t *testing.T) {
	l := NewLoop()
	l.Start()
	l.Stop()
	<-l.Done()

	if err := l.Call(func() {}); err != ErrStopped {
		t.Fatalf("call on stopped loop: err=%v, want ErrStopped", err)
	}
}

func TestTaskReenqueuesItself(t *testing.T) {
	l := NewLoop()
	l.Start()
	defer l.Stop()

	var count atomic.Int32
	var step func()
	done := make(chan struct{})
	step = func() {
		if count.Add(1) >= 3 {
			close(done)
			return
		}
		l.After(5*time.Millisecond, step)
	}
	l.After(5*time.Millisecond, step)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("repeating task stalled at %d runs", count.Load())
	}
}

func TestRevokedJobNeverRunsAgain(t *testing.T) {
	l := NewLoop()
	l.Start()
	defer l.Stop()

	jobs := NewJobSet()
	var runs atomic.Int32
	var id JobID

	if err := l.Call(func() {
		id = jobs.Spawn()
		var step func()
		step = func() {
			// stop condition checked after every suspension
			if !jobs.Active(id) {
				return
			}
			runs.Add(1)
			l.After(10*time.Millisecond, step)
		}
		l.After(10*time.Millisecond, step)
	}); err != nil {
		t.Fatalf("call: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := l.Call(func() { jobs.Revoke(id) }); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	after := runs.Load()

	time.Sleep(80 * time.Millisecond)
	// at most one in-flight step may still have been pending at the
	// moment of revocation
	if d := runs.Load() - after; d > 1 {
		t.Fatalf("job ran %d more times after revocation", d)
	}
	if after == 0 {
		t.Fatalf("job never ran before revocation")
	}
}

func TestJobSetClear(t *testing.T) {
	s := NewJobSet()
	a, b := s.Spawn(), s.Spawn()
	if !s.Active(a) || !s.Active(b) {
		t.Fatalf("freshly spawned jobs inactive")
	}
	if a == b {
		t.Fatalf("spawn returned duplicate job ids")
	}
	s.Clear()
	if s.Active(a) || s.Active(b) || s.Len() != 0 {
		t.Fatalf("clear left active jobs: %d", s.Len())
	}
}
