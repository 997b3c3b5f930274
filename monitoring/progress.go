package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how much of a long-running stretch of work is done.
// The simulation thread updates it while the monitor serves snapshots of it
// over HTTP, so all the counters stay behind a lock.
type ProgressBar struct {
	lock sync.Mutex

	id         string
	name       string
	startTime  time.Time
	total      uint64
	finished   uint64
	inProgress uint64
}

// progressBarState is a consistent view of a ProgressBar, in the shape the
// dashboard consumes.
type progressBarState struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress marks an amount of work as started.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.inProgress += amount
}

// IncrementFinished marks an amount of work as finished without going
// through the in-progress state.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.finished += amount
}

// MoveInProgressToFinished marks an amount of started work as finished.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.inProgress -= amount
	b.finished += amount
}

func (b *ProgressBar) snapshot() progressBarState {
	b.lock.Lock()
	defer b.lock.Unlock()

	return progressBarState{
		ID:         b.id,
		Name:       b.name,
		StartTime:  b.startTime,
		Total:      b.total,
		Finished:   b.finished,
		InProgress: b.inProgress,
	}
}
