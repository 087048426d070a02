package measure

import "time"

// Measure stores one metric per node.
type Measure interface {
	AddMetric(name string, workers int) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric accumulates the executions of a single node.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AddSkip()
	AddRequest(inputName string, pixels int)
	AVGDuration() time.Duration
	Executions() int64
	Skips() int64
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
	AllRequests() map[string]*RequestInfo
}
