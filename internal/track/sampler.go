package track

import "time"

// DefaultSampleInterval is the trackpoint cadence. One point per 3 seconds
// bounds file growth regardless of how fast the receiver emits sentences.
const DefaultSampleInterval = 3 * time.Second

// Sampler gates trackpoint emission to a fixed interval. It exists
// logically only while a session is Active; Reset re-arms it on each new
// session so the first valid fix is written immediately instead of waiting
// out a full interval.
//
// Callers must pass a monotonic now (time.Now carries a monotonic reading)
// so wall-clock jumps from the receiver cannot stall or storm sampling.
type Sampler struct {
	interval time.Duration
	last     time.Time
	emitted  bool
}

func NewSampler(interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &Sampler{interval: interval}
}

// Reset forgets the last emission. Called on every Idle→Active transition.
func (s *Sampler) Reset() {
	s.emitted = false
}

// ShouldEmit reports whether a point is due at now.
func (s *Sampler) ShouldEmit(now time.Time) bool {
	if !s.emitted {
		return true
	}
	return now.Sub(s.last) >= s.interval
}

// MarkEmitted records a successful write. Only actual writes advance the
// clock; skipped points (invalid location) must not.
func (s *Sampler) MarkEmitted(now time.Time) {
	s.last = now
	s.emitted = true
}
