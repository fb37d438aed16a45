package domain

import "time"

// PollState is the per-session memory of the readiness machine. It lives
// for one page session and is mutated only by the machine, always within
// a single evaluation pass.
type PollState struct {
	LastCheckedID string
	PendingID     string
	PendingSince  time.Time
}

// Reset clears everything; used whenever the panel closes or no panel is
// present, which re-arms checking for a subject whose panel is reopened.
func (s *PollState) Reset() {
	s.LastCheckedID = ""
	s.ClearPending()
}

// ClearPending drops the pending marker without touching the dedup marker.
func (s *PollState) ClearPending() {
	s.PendingID = ""
	s.PendingSince = time.Time{}
}

// MarkPending records when a subject first entered a pending state. A
// different subject id replaces the previous pending marker outright, so
// a subject switched away mid-pending never produces a result.
func (s *PollState) MarkPending(id string, now time.Time) {
	if s.PendingID == id {
		return
	}
	s.PendingID = id
	s.PendingSince = now
}
