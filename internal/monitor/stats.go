package monitor

import (
	"math"
	"slices"
	"time"
)

// Stats summarizes the samples currently in one series' window.
type Stats struct {
	// Last is the newest slot, which may be a gap.
	Last Sample
	Min  time.Duration
	Max  time.Duration
	Avg  time.Duration
	// Jitter is the mean absolute difference between consecutive replies.
	Jitter time.Duration
	P95    time.Duration
	// Replies and Timeouts count valid and gap slots.
	Replies  int
	Timeouts int
}

// Loss returns the fraction of slots without a reply, 0 to 1.
func (s Stats) Loss() float64 {
	total := s.Replies + s.Timeouts
	if total == 0 {
		return 0
	}
	return float64(s.Timeouts) / float64(total)
}

// ComputeStats summarizes samples ordered oldest to newest.
func ComputeStats(samples []Sample) Stats {
	var st Stats
	if len(samples) == 0 {
		return st
	}
	st.Last = samples[len(samples)-1]

	values := make([]time.Duration, 0, len(samples))
	var (
		sum      time.Duration
		jitter   time.Duration
		prev     time.Duration
		havePrev bool
	)
	for _, s := range samples {
		if !s.Valid {
			st.Timeouts++
			continue
		}
		values = append(values, s.Value)
		sum += s.Value
		if havePrev {
			d := s.Value - prev
			if d < 0 {
				d = -d
			}
			jitter += d
		}
		prev = s.Value
		havePrev = true
	}

	st.Replies = len(values)
	if st.Replies == 0 {
		return st
	}

	st.Avg = sum / time.Duration(st.Replies)
	if st.Replies > 1 {
		st.Jitter = jitter / time.Duration(st.Replies-1)
	}

	slices.Sort(values)
	st.Min = values[0]
	st.Max = values[len(values)-1]
	st.P95 = percentile(values, 0.95)
	return st
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
