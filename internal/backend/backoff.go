package backend

import "time"

// backoff stretches the poll delay while a source keeps failing. Each
// consecutive failure doubles the delay up to max; a success resets it.
type backoff struct {
	base     time.Duration
	max      time.Duration
	failures int
}

func newBackoff(base time.Duration) *backoff {
	return &backoff{base: base, max: base * 8}
}

// next records the outcome of a poll and returns the delay before the next one.
func (b *backoff) next(failed bool) time.Duration {
	if !failed {
		b.failures = 0
		return b.base
	}
	b.failures++
	delay := b.base
	for i := 0; i < b.failures && delay < b.max; i++ {
		delay *= 2
	}
	return min(delay, b.max)
}
