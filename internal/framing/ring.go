// Package framing turns the raw serial byte stream into prelude-aligned
// command frames. It owns the inbound ring buffer and the per-tick
// resynchronizing scanner.
package framing

// Ring is a fixed-capacity byte queue backing the frame scanner. All C
// slots are usable. It is owned and mutated by exactly one goroutine
// (the poll task), so it carries no lock.
//
// Invariant: head == tail exactly when the ring is empty or full; the
// used counter disambiguates the two.
type Ring struct {
	buf  []byte
	head int
	tail int
	used int
}

// NewRing creates a ring with the given capacity.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}

	return &Ring{buf: make([]byte, capacity)}
}

func (r *Ring) Full() bool  { return r.used == len(r.buf) }
func (r *Ring) Empty() bool { return r.head == r.tail && r.used == 0 }

// Used reports the number of buffered bytes.
func (r *Ring) Used() int { return r.used }

// Clear resets the ring to empty.
func (r *Ring) Clear() {
	r.head = 0
	r.tail = 0
	r.used = 0
}

// Enqueue appends a byte. It returns false when the ring is full; the
// caller drops the byte, which is the system's only backpressure.
func (r *Ring) Enqueue(b byte) bool {
	if r.Full() {
		return false
	}

	r.buf[r.head] = b
	r.head = (r.head + 1) % len(r.buf)
	r.used++

	return true
}

// Dequeue removes and returns the oldest byte. The vacated slot is
// zeroed so stale bytes can never be re-read through Peek.
func (r *Ring) Dequeue() (byte, bool) {
	if r.Empty() {
		return 0, false
	}

	b := r.buf[r.tail]
	r.buf[r.tail] = 0
	r.tail = (r.tail + 1) % len(r.buf)
	r.used--

	return b, true
}

// Peek copies up to max-1 of the oldest bytes without consuming them.
// One slot is held back for a sentinel terminator so text-mode callers
// can pass the result straight to C-string style parsers.
func (r *Ring) Peek(max int) []byte {
	if r.Empty() || max <= 1 {
		return nil
	}

	n := r.used
	if n > max-1 {
		n = max - 1
	}
	out := make([]byte, n)
	for k := 0; k < n; k++ {
		out[k] = r.buf[(r.tail+k)%len(r.buf)]
	}

	return out
}
