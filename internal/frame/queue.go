// Package frame implements the animation-frame scheduler that drives all
// toast timing. Callbacks requested during a frame run on the next frame,
// never the current one.
package frame

import "time"

// Handle identifies a pending frame request. The zero Handle is never
// returned by RequestFrame.
type Handle uint64

// Callback receives the host timestamp of the frame, measured from the
// scheduler's origin.
type Callback func(now time.Duration)

// Scheduler is the host's frame scheduler.
type Scheduler interface {
	RequestFrame(cb Callback) Handle
	CancelFrame(h Handle)
}

// Queue is a Scheduler whose frames are run explicitly by the host, either
// from a real ticker (see Run) or from a manual clock in tests (see Tick).
//
// Queue is not safe for concurrent use.
type Queue struct {
	next      Handle
	order     []Handle
	pending   map[Handle]Callback
	now       time.Duration
	suspended bool
	frames    uint64
}

// NewQueue creates an empty Queue at time zero.
func NewQueue() *Queue {
	return &Queue{pending: make(map[Handle]Callback)}
}

// RequestFrame schedules cb for the next frame.
func (q *Queue) RequestFrame(cb Callback) Handle {
	q.next++
	q.pending[q.next] = cb
	q.order = append(q.order, q.next)
	return q.next
}

// CancelFrame drops a pending request. Unknown or already-run handles are
// ignored.
func (q *Queue) CancelFrame(h Handle) {
	delete(q.pending, h)
}

// Run sets the clock to now and, unless suspended, runs every callback
// that was pending before the call. It returns the number of callbacks run.
func (q *Queue) Run(now time.Duration) int {
	if now > q.now {
		q.now = now
	}
	if q.suspended || len(q.pending) == 0 {
		q.order = q.compact()
		return 0
	}

	batch := q.order
	q.order = nil
	q.frames++

	ran := 0
	for _, h := range batch {
		cb, ok := q.pending[h]
		if !ok {
			continue
		}
		delete(q.pending, h)
		cb(q.now)
		ran++
	}
	return ran
}

// Tick advances the clock by d and runs a frame.
func (q *Queue) Tick(d time.Duration) int {
	return q.Run(q.now + d)
}

// Advance runs frames every step until total has elapsed.
func (q *Queue) Advance(total, step time.Duration) {
	if step <= 0 {
		step = total
	}
	for elapsed := time.Duration(0); elapsed < total; {
		d := min(step, total-elapsed)
		q.Tick(d)
		elapsed += d
	}
}

// SetSuspended stops or restarts frame delivery. The clock keeps moving
// while suspended, as it does for a backgrounded document.
func (q *Queue) SetSuspended(suspended bool) {
	q.suspended = suspended
}

// Suspended reports whether frame delivery is stopped.
func (q *Queue) Suspended() bool { return q.suspended }

// Now returns the timestamp of the most recent Run.
func (q *Queue) Now() time.Duration { return q.now }

// Len returns the number of pending requests.
func (q *Queue) Len() int { return len(q.pending) }

// Frames returns the number of frames that ran at least one callback.
func (q *Queue) Frames() uint64 { return q.frames }

// compact drops cancelled handles from the order slice.
func (q *Queue) compact() []Handle {
	if len(q.order) == len(q.pending) {
		return q.order
	}
	out := q.order[:0]
	for _, h := range q.order {
		if _, ok := q.pending[h]; ok {
			out = append(out, h)
		}
	}
	return out
}
