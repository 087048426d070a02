// Package autoscaler decides how many workers a node execution is split across.
package autoscaler

import "runtime"

// MinPixelsPerWorker is the smallest amount of work worth a goroutine.
const MinPixelsPerWorker = 4096

// AutoScaler bounds the number of workers used for a unit of work.
type AutoScaler struct {
	// MaxWorkers caps the result. Zero or less means runtime.GOMAXPROCS(0).
	MaxWorkers int
	// MinPerWorker is the minimum amount of work given to one worker. Zero or less means MinPixelsPerWorker.
	MinPerWorker int
}

// New creates an autoscaler capped at maxWorkers.
func New(maxWorkers int) *AutoScaler {
	return &AutoScaler{MaxWorkers: maxWorkers}
}

// Workers returns how many workers should share work units of work, split in at most pieces parts.
func (a *AutoScaler) Workers(work, pieces int) int {
	maxWorkers := a.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = runtime.GOMAXPROCS(0)
	}

	minPerWorker := a.MinPerWorker
	if minPerWorker <= 0 {
		minPerWorker = MinPixelsPerWorker
	}

	workers := work / minPerWorker
	workers = min(workers, maxWorkers, pieces)

	return max(workers, 1)
}
