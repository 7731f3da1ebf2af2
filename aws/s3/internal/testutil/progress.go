package testutil

import "sync"

// ProgressRecorder is a s3types.ProgressTracker that keeps every event.
type ProgressRecorder struct {
	mu sync.Mutex

	// Updates holds the transferred byte count of each Update call.
	Updates   []int64
	Total     int64
	Completed bool
	Err       error
}

// Update implements s3types.ProgressTracker.
func (p *ProgressRecorder) Update(transferred, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Updates = append(p.Updates, transferred)
	p.Total = total
}

// Complete implements s3types.ProgressTracker.
func (p *ProgressRecorder) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Completed = true
}

// Error implements s3types.ProgressTracker.
func (p *ProgressRecorder) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Err = err
}

// Last returns the most recent transferred byte count, or -1 without updates.
func (p *ProgressRecorder) Last() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Updates) == 0 {
		return -1
	}
	return p.Updates[len(p.Updates)-1]
}
