// Package sequence orders overlapping requests that target the same view.
//
// Each request takes a Ticket before it goes out. Tickets come from one
// process-wide counter, so a ticket issued later always has the larger
// number, whatever happened to the view in between. Stores compare ticket
// numbers to drop responses that arrive after a newer one was applied.
package sequence

import "sync/atomic"

// Tracker hands out increasing sequence numbers. The zero value is ready
// to use.
type Tracker struct {
	n atomic.Uint64
}

// NewTracker returns a Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Ticket identifies one request.
type Ticket struct {
	seq uint64
}

// Next issues the next ticket. Numbers are never reused.
func (t *Tracker) Next() Ticket {
	return Ticket{seq: t.n.Add(1)}
}

// Seq returns the ticket's sequence number. The zero Ticket has Seq 0,
// older than any issued ticket.
func (tk Ticket) Seq() uint64 { return tk.seq }

// Before reports whether tk was issued before other.
func (tk Ticket) Before(other Ticket) bool { return tk.seq < other.seq }
