package sched

import "github.com/google/uuid"

// JobID identifies one long-lived behavior instance.
type JobID string

// JobSet tracks the active jobs of one owner (a player or an entity).
// Cancellation is cooperative: revoking an id makes the behavior exit
// silently at its next suspension point. A JobSet must only be
// touched from its game's loop.
type JobSet struct {
	active map[JobID]struct{}
}

// NewJobSet creates an empty job set.
func NewJobSet() *JobSet {
	return &JobSet{active: make(map[JobID]struct{})}
}

// Spawn registers and returns a fresh job id.
func (s *JobSet) Spawn() JobID {
	id := JobID(uuid.NewString())
	s.active[id] = struct{}{}
	return id
}

// Active reports whether the job id has not been revoked.
func (s *JobSet) Active(id JobID) bool {
	_, ok := s.active[id]
	return ok
}

// Revoke cancels a single job.
func (s *JobSet) Revoke(id JobID) {
	delete(s.active, id)
}

// Clear cancels every job in the set.
func (s *JobSet) Clear() {
	for id := range s.active {
		delete(s.active, id)
	}
}

// Len returns the number of active jobs.
func (s *JobSet) Len() int {
	return len(s.active)
}
