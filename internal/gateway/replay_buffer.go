package gateway

import "sync"

// ReplayBuffer is a fixed-size circular buffer of recently broadcast
// envelopes, replayed to newly connected clients.
//
// Thread-safe for concurrent writes and reads.
type ReplayBuffer struct {
	mu   sync.RWMutex
	buf  [][]byte
	cap  int
	pos  int // next write position
	full bool
}

// NewReplayBuffer creates a replay buffer with the given capacity.
func NewReplayBuffer(capacity int) *ReplayBuffer {
	if capacity <= 0 {
		capacity = 50
	}
	return &ReplayBuffer{
		buf: make([][]byte, capacity),
		cap: capacity,
	}
}

// Push appends an envelope. Overwrites the oldest entry when full.
func (rb *ReplayBuffer) Push(data []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	// Copy so the buffer does not alias the caller's slice.
	cp := make([]byte, len(data))
	copy(cp, data)

	rb.buf[rb.pos] = cp
	rb.pos = (rb.pos + 1) % rb.cap
	if rb.pos == 0 && !rb.full {
		rb.full = true
	}
}

// Recent returns the buffered envelopes, oldest first.
func (rb *ReplayBuffer) Recent() [][]byte {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	count := rb.len()
	out := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, rb.buf[rb.index(i)])
	}
	return out
}

// Len returns the number of buffered envelopes.
func (rb *ReplayBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.len()
}

func (rb *ReplayBuffer) len() int {
	if rb.full {
		return rb.cap
	}
	return rb.pos
}

// index converts a logical index (0 = oldest) to a physical buffer index.
func (rb *ReplayBuffer) index(logical int) int {
	if rb.full {
		return (rb.pos + logical) % rb.cap
	}
	return logical
}
