// Package sched implements the per-game cooperative scheduler.
//
// Every game runs on exactly one Loop goroutine: timed behaviors are
// re-enqueued callbacks, and external action calls are executed
// synchronously on the loop between behavior steps. Because nothing
// else ever touches game state, a behavior step is atomic with
// respect to every other step in the same game. Separate games own
// separate loops and share no mutable state.
package sched

import (
	"container/heap"
	"errors"
	"sync"
	"time"
)

// ErrStopped is returned by Call once the loop has shut down.
var ErrStopped = errors.New("sched: loop stopped")

// Loop is a single-goroutine timed-task scheduler.
type Loop struct {
	calls chan call
	wake  chan struct{}
	quit  chan struct{}
	done  chan struct{}

	stopOnce sync.Once

	mu    sync.Mutex
	tasks taskHeap
	seq   uint64
}

type call struct {
	fn   func()
	done chan struct{}
}

type task struct {
	at  time.Time
	seq uint64 // tie-break: preserve submission order
	fn  func()
}

// NewLoop creates a loop. Tasks may be enqueued before Start.
func NewLoop() *Loop {
	return &Loop{
		calls: make(chan call),
		wake:  make(chan struct{}, 1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start launches the loop goroutine.
func (l *Loop) Start() {
	go l.run()
}

// Stop shuts the loop down. Pending tasks are discarded. Safe to call
// from any goroutine, including a task running on the loop itself.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.quit) })
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// After enqueues fn to run on the loop after the given delay. Safe to
// call both from loop tasks (re-enqueueing themselves) and from other
// goroutines.
func (l *Loop) After(d time.Duration, fn func()) {
	l.mu.Lock()
	heap.Push(&l.tasks, &task{at: time.Now().Add(d), seq: l.seq, fn: fn})
	l.seq++
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop and blocks until it has completed, making
// fn atomic with respect to every scheduled task. Must not be called
// from the loop goroutine itself.
func (l *Loop) Call(fn func()) error {
	c := call{fn: fn, done: make(chan struct{})}
	select {
	case l.calls <- c:
	case <-l.quit:
		return ErrStopped
	}
	<-c.done
	return nil
}

func (l *Loop) run() {
	defer close(l.done)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		var timerC <-chan time.Time
		if next, ok := l.peek(); ok {
			d := time.Until(next)
			if d <= 0 {
				l.runDue()
				continue
			}
			timer.Reset(d)
			timerC = timer.C
		}

		select {
		case <-l.quit:
			return
		case c := <-l.calls:
			timer.Stop()
			c.fn()
			close(c.done)
		case <-l.wake:
			timer.Stop()
		case <-timerC:
		}
	}
}

func (l *Loop) peek() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return time.Time{}, false
	}
	return l.tasks[0].at, true
}

// runDue pops and runs every task whose wake time has passed, one at
// a time so that a task re-enqueueing itself is re-ordered fairly.
func (l *Loop) runDue() {
	now := time.Now()
	for {
		l.mu.Lock()
		if len(l.tasks) == 0 || l.tasks[0].at.After(now) {
			l.mu.Unlock()
			return
		}
		t := heap.Pop(&l.tasks).(*task)
		l.mu.Unlock()

		t.fn()
	}
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(*task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
