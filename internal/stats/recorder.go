// Package stats records per-player gauge samples into fixed time
// buckets and compiles them into gap-free series for the game result.
package stats

import "time"

// Sample is one observation of a player's gauges.
type Sample struct {
	Money      int
	Occupation int
	Factories  int
	Turrets    int
	Probes     int
}

// Series is a player's compiled time series: one value per bucket,
// gaps filled with the latest known sample.
type Series struct {
	Money      []int
	Occupation []int
	Factories  []int
	Turrets    []int
	Probes     []int
}

// Recorder buckets samples by elapsed time since Start. A later
// sample in the same bucket overwrites the earlier one.
type Recorder struct {
	unit  time.Duration
	now   func() time.Time
	start time.Time

	players map[string]map[int]Sample
	maxTID  int
}

// NewRecorder creates a recorder with the given bucket duration. The
// clock is injectable for tests; nil means time.Now.
func NewRecorder(unit time.Duration, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	r := &Recorder{
		unit:    unit,
		now:     now,
		players: make(map[string]map[int]Sample),
	}
	r.start = now()
	return r
}

// Start resets the recording origin.
func (r *Recorder) Start() {
	r.start = r.now()
}

func (r *Recorder) tid() int {
	return int(r.now().Sub(r.start) / r.unit)
}

// Record stores a sample for the player in the current bucket.
func (r *Recorder) Record(player string, s Sample) {
	tid := r.tid()
	if tid > r.maxTID {
		r.maxTID = tid
	}
	buckets, ok := r.players[player]
	if !ok {
		buckets = make(map[int]Sample)
		r.players[player] = buckets
	}
	buckets[tid] = s
}

// Compile returns the player's series over every bucket seen by the
// recorder, forward-filling gaps and backfilling buckets before the
// first sample. A player with no samples gets all-zero series.
func (r *Recorder) Compile(player string) Series {
	n := r.maxTID + 1
	out := Series{
		Money:      make([]int, n),
		Occupation: make([]int, n),
		Factories:  make([]int, n),
		Turrets:    make([]int, n),
		Probes:     make([]int, n),
	}
	buckets := r.players[player]
	if len(buckets) == 0 {
		return out
	}

	// backfill: the first known sample stands in for earlier buckets
	var current Sample
	for tid := 0; tid <= r.maxTID; tid++ {
		if s, ok := buckets[tid]; ok {
			current = s
			break
		}
	}

	for tid := 0; tid < n; tid++ {
		if s, ok := buckets[tid]; ok {
			current = s
		}
		out.Money[tid] = current.Money
		out.Occupation[tid] = current.Occupation
		out.Factories[tid] = current.Factories
		out.Turrets[tid] = current.Turrets
		out.Probes[tid] = current.Probes
	}
	return out
}
