package stats

import (
	"testing"
	"time"
)

// fakeClock advances manually.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestRecorderForwardFill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := NewRecorder(time.Second, clock.now)

	r.Record("p1", Sample{Money: 100, Probes: 3})
	clock.advance(3 * time.Second) // skip two buckets
	r.Record("p1", Sample{Money: 70, Probes: 4})

	s := r.Compile("p1")
	wantMoney := []int{100, 100, 100, 70}
	if len(s.Money) != len(wantMoney) {
		t.Fatalf("series length = %d, want %d", len(s.Money), len(wantMoney))
	}
	for i, want := range wantMoney {
		if s.Money[i] != want {
			t.Fatalf("money[%d] = %d, want %d", i, s.Money[i], want)
		}
	}
	if s.Probes[1] != 3 || s.Probes[3] != 4 {
		t.Fatalf("probes series not forward-filled: %v", s.Probes)
	}
}

func TestRecorderBackfill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := NewRecorder(time.Second, clock.now)

	// p2 only starts recording in bucket 2
	r.Record("p1", Sample{Money: 10})
	clock.advance(2 * time.Second)
	r.Record("p2", Sample{Money: 55})

	s := r.Compile("p2")
	for i := 0; i <= 2; i++ {
		if s.Money[i] != 55 {
			t.Fatalf("money[%d] = %d, want backfilled 55", i, s.Money[i])
		}
	}
}

func TestRecorderSameBucketOverwrites(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := NewRecorder(time.Second, clock.now)

	r.Record("p1", Sample{Money: 1})
	clock.advance(200 * time.Millisecond)
	r.Record("p1", Sample{Money: 2})

	s := r.Compile("p1")
	if len(s.Money) != 1 || s.Money[0] != 2 {
		t.Fatalf("same-bucket overwrite failed: %v", s.Money)
	}
}

func TestRecorderUnknownPlayerIsZero(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := NewRecorder(time.Second, clock.now)
	r.Record("p1", Sample{Money: 9})
	clock.advance(time.Second)
	r.Record("p1", Sample{Money: 9})

	s := r.Compile("ghost")
	if len(s.Money) != 2 {
		t.Fatalf("series length = %d, want 2", len(s.Money))
	}
	for i, v := range s.Money {
		if v != 0 {
			t.Fatalf("money[%d] = %d, want 0", i, v)
		}
	}
}
