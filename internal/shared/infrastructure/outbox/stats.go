package outbox

import (
	"sync"
	"time"
)

// Stats is a snapshot of processor activity.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
}

type statsRecorder struct {
	mu sync.Mutex
	s  Stats
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s
}

func (r *statsRecorder) published() {
	r.mu.Lock()
	r.s.PublishedCount++
	r.mu.Unlock()
}

func (r *statsRecorder) retried(err error) {
	r.mu.Lock()
	r.s.FailedCount++
	r.setErrorLocked(err)
	r.mu.Unlock()
}

func (r *statsRecorder) deadLettered(err error) {
	r.mu.Lock()
	r.s.DeadCount++
	r.setErrorLocked(err)
	r.mu.Unlock()
}

func (r *statsRecorder) fail(err error) {
	r.mu.Lock()
	r.setErrorLocked(err)
	r.mu.Unlock()
}

func (r *statsRecorder) setErrorLocked(err error) {
	now := time.Now()
	r.s.LastError = err.Error()
	r.s.LastErrorAt = &now
}

// polled records a poll at now and returns the age in seconds of the oldest
// pending message, or zero when nothing is pending.
func (r *statsRecorder) polled(now time.Time, pending []*Message) float64 {
	var lag float64
	if len(pending) > 0 {
		oldest := pending[0].CreatedAt
		for _, msg := range pending[1:] {
			if msg.CreatedAt.Before(oldest) {
				oldest = msg.CreatedAt
			}
		}
		lag = now.Sub(oldest).Seconds()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.s.LastProcessedAt = &now
	r.s.LagSeconds = lag
	return lag
}
