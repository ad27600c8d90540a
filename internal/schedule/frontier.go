package schedule

import (
	"github.com/roach88/schedcheck/internal/ir"
)

// Frontier is the happens-before state of one verification run.
//
// For each stream S it records, per other stream T, the highest position on
// T known to have completed before S issues its next instruction. Entries
// only grow. A stream never has an entry for itself: instructions on the
// same stream are ordered by position alone.
type Frontier struct {
	rows map[ir.StreamID]map[ir.StreamID]int
}

// NewFrontier returns an empty frontier: no stream knows anything about any
// other stream.
func NewFrontier() *Frontier {
	return &Frontier{rows: make(map[ir.StreamID]map[ir.StreamID]int)}
}

// Merge folds a waited-on event into the waiting stream's row: the producing
// stream is complete up to pos, and so is everything in snapshot, the
// producer's own row as it stood when the event was added.
//
// Merge takes the maximum of each entry, so it is idempotent and the order of
// merges does not matter.
func (f *Frontier) Merge(waiting, producing ir.StreamID, pos int, snapshot map[ir.StreamID]int) {
	f.raise(waiting, producing, pos)
	for t, p := range snapshot {
		f.raise(waiting, t, p)
	}
}

func (f *Frontier) raise(s, t ir.StreamID, pos int) {
	if s == t {
		return
	}
	row, ok := f.rows[s]
	if !ok {
		row = make(map[ir.StreamID]int)
		f.rows[s] = row
	}
	if cur, ok := row[t]; !ok || pos > cur {
		row[t] = pos
	}
}

// Covers reports whether an instruction issued next on consumer is ordered
// after the instruction at pos on producer.
func (f *Frontier) Covers(consumer, producer ir.StreamID, pos int) bool {
	if consumer == producer {
		return true
	}
	known, ok := f.rows[consumer][producer]
	return ok && known >= pos
}

// Known returns the highest position on t that s has observed.
func (f *Frontier) Known(s, t ir.StreamID) (int, bool) {
	pos, ok := f.rows[s][t]
	return pos, ok
}

// Snapshot returns a copy of s's row, or nil if s has observed nothing.
func (f *Frontier) Snapshot(s ir.StreamID) map[ir.StreamID]int {
	row := f.rows[s]
	if len(row) == 0 {
		return nil
	}
	out := make(map[ir.StreamID]int, len(row))
	for t, p := range row {
		out[t] = p
	}
	return out
}
