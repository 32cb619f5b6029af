package kernel

// histRing is a fixed-depth lookback ring for a single recurrence state
// variable. Capacity is rounded up to a power of two so lookbacks resolve
// with a bitwise mask. Slots older than the write history are zero, which
// matches the zero-initialized arrays the reference paths index into.
type histRing struct {
	buf  []float64
	mask uint64
	head uint64 // total values pushed
}

// newHistRing creates a ring that can look back at least depth bars.
func newHistRing(depth int) *histRing {
	cap := nextPow2(depth + 1)
	return &histRing{
		buf:  make([]float64, cap),
		mask: uint64(cap - 1),
	}
}

// push appends a value, evicting the oldest slot.
func (r *histRing) push(v float64) {
	r.buf[r.head&r.mask] = v
	r.head++
}

// at returns the value pushed `back` bars ago (0 = most recent). Reads past
// the pushed history return 0.
func (r *histRing) at(back int) float64 {
	if uint64(back) >= r.head {
		return 0
	}
	return r.buf[(r.head-1-uint64(back))&r.mask]
}

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
