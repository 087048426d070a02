package measure

import (
	"sync"
)

// DefaultMeasure keeps metrics in memory.
type DefaultMeasure struct {
	mu    sync.Mutex
	Steps map[string]Metric
}

// NewDefaultMeasure creates an empty measure.
func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		Steps: make(map[string]Metric),
	}
}

// AddMetric registers a node and returns its metric.
func (m *DefaultMeasure) AddMetric(name string, workers int) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := &DefaultMetric{
		mu:          &sync.Mutex{},
		allRequests: make(map[string]*RequestInfo),
		workers:     workers,
	}
	m.Steps[name] = mt

	return mt
}

// GetMetric returns the metric of a node, or nil.
func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Steps[name]
}

// AllMetrics returns every registered metric keyed by node label.
func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make(map[string]Metric, len(m.Steps))
	for k, v := range m.Steps {
		res[k] = v
	}

	return res
}

var _ Measure = (*DefaultMeasure)(nil)
