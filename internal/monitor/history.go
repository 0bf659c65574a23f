package monitor

import "time"

// sampleRing is a fixed-size circular buffer of tick samples.
type sampleRing struct {
	data  []Sample
	head  int
	count int
	size  int
}

// newSampleRing creates an empty ring holding capacity samples.
func newSampleRing(size int) *sampleRing {
	if size < 1 {
		size = 1
	}
	return &sampleRing{
		data: make([]Sample, size),
		size: size,
	}
}

// push adds a sample, dropping the oldest when full.
func (r *sampleRing) push(s Sample) {
	r.data[r.head] = s
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count samples in chronological order (oldest first).
func (r *sampleRing) getLast(count int) []Sample {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]Sample, count)

	// head is the next write position, so the newest sample is at head-1.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}

	return result
}

// values returns every stored sample, oldest first.
func (r *sampleRing) values() []Sample {
	return r.getLast(r.count)
}

// resize reinitializes the ring at a new capacity, keeping the newest
// min(len, size) samples.
func (r *sampleRing) resize(size int) {
	if size < 1 {
		size = 1
	}
	if size == r.size {
		return
	}
	kept := r.getLast(size)
	r.data = make([]Sample, size)
	r.size = size
	r.head = 0
	r.count = 0
	for _, s := range kept {
		r.push(s)
	}
}

// bounds returns the min and max of the valid samples. ok is false when
// there are none.
func (r *sampleRing) bounds() (lo, hi time.Duration, ok bool) {
	for i := 0; i < r.count; i++ {
		s := r.data[(r.head-r.count+i+r.size)%r.size]
		if !s.Valid {
			continue
		}
		if !ok || s.Value < lo {
			lo = s.Value
		}
		if !ok || s.Value > hi {
			hi = s.Value
		}
		ok = true
	}
	return lo, hi, ok
}
