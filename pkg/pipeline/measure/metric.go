package measure

import (
	"sync"
	"time"
)

// RequestInfo accumulates the regions a node requested from one of its inputs.
type RequestInfo struct {
	Pixels int64
	total  int64
}

// AVGPixels returns the mean number of pixels per request.
func (r *RequestInfo) AVGPixels() int64 {
	if r.total == 0 {
		return 0
	}

	return r.Pixels / r.total
}

// DefaultMetric is the in-memory Metric.
type DefaultMetric struct {
	allRequests map[string]*RequestInfo
	mu          *sync.Mutex
	EndDuration time.Duration
	elapsed     time.Duration
	executions  int64
	skips       int64
	workers     int
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.executions++
	mt.elapsed += elapsed
}

func (mt *DefaultMetric) AddSkip() {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.skips++
}

func (mt *DefaultMetric) SetTotalDuration(endDuration time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.EndDuration = endDuration
}

func (mt *DefaultMetric) GetTotalDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.EndDuration
}

func (mt *DefaultMetric) AddRequest(inputName string, pixels int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.allRequests[inputName] == nil {
		mt.allRequests[inputName] = &RequestInfo{}
	}
	req := mt.allRequests[inputName]
	req.Pixels += int64(pixels)
	req.total++
}

func (mt *DefaultMetric) AVGDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.executions == 0 {
		return time.Duration(0)
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.executions)))
}

func (mt *DefaultMetric) Executions() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.executions
}

func (mt *DefaultMetric) Skips() int64 {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.skips
}

func (mt *DefaultMetric) AllRequests() map[string]*RequestInfo {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	res := make(map[string]*RequestInfo, len(mt.allRequests))
	for k, v := range mt.allRequests {
		cp := *v
		res[k] = &cp
	}

	return res
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Hour)
	case d > time.Minute:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
