// Package ratelimit gates question requests per document and tracks a global
// exponential backoff driven by upstream failure signals.
package ratelimit

import (
	"sync"
	"time"
)

type Options struct {
	// MinInterval is the minimum spacing between admitted requests for the
	// same document, in seconds.
	MinInterval float64
	// Floor and Ceiling bound the backoff window, in seconds.
	Floor   float64
	Ceiling float64
}

// Limiter is the single process-wide admission gate. The last-request clock is
// per document; the backoff level is shared across all documents, matching the
// coarse upstream-protection behavior this service has always had.
type Limiter struct {
	mu                  sync.Mutex
	lastRequest         map[int64]time.Time
	consecutiveFailures int
	backoff             float64

	opts Options
	now  func() time.Time
}

func New(opts Options) *Limiter {
	if opts.MinInterval <= 0 {
		opts.MinInterval = 3
	}
	if opts.Floor <= 0 {
		opts.Floor = 60
	}
	if opts.Ceiling < opts.Floor {
		opts.Ceiling = 300
	}
	return &Limiter{
		lastRequest: make(map[int64]time.Time),
		backoff:     opts.Floor,
		opts:        opts,
		now:         time.Now,
	}
}

// Admit returns the seconds the caller must still wait before a request for
// this document may proceed. Zero means admitted. A rejected attempt is not
// recorded: only Record stamps the clock.
func (l *Limiter) Admit(documentID int64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.lastRequest[documentID]
	if !ok {
		return 0
	}
	elapsed := l.now().Sub(last).Seconds()
	if wait := l.opts.MinInterval - elapsed; wait > 0 {
		return wait
	}
	return 0
}

// Record stamps the document's last-request time. Call exactly once per
// admitted request, before downstream work starts, so overlapping calls for
// the same document still space out correctly.
func (l *Limiter) Record(documentID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastRequest[documentID] = l.now()
}

// ReportOutcome updates the shared backoff after the pipeline completes.
// Failures double the window up to the ceiling; any success resets it to the
// floor.
func (l *Limiter) ReportOutcome(success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if success {
		l.consecutiveFailures = 0
		l.backoff = l.opts.Floor
		return
	}

	l.consecutiveFailures++
	l.backoff *= 2
	if l.backoff > l.opts.Ceiling {
		l.backoff = l.opts.Ceiling
	}
}

// Backoff returns the current backoff window in seconds, used as the retry
// hint when the upstream signals exhaustion.
func (l *Limiter) Backoff() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backoff
}

// ConsecutiveFailures reports the current failure streak.
func (l *Limiter) ConsecutiveFailures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consecutiveFailures
}

// SetClock overrides the time source. Test hook.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
