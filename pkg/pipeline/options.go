package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

// Option configures a Graph.
type Option func(g *Graph)

// WithWorkers caps the number of goroutines a single node execution can use.
// Zero or less means runtime.GOMAXPROCS(0).
func WithWorkers(workers int) Option {
	return func(g *Graph) {
		g.workers = workers
	}
}

// WithLogger replaces the default logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Graph) {
		g.logger = log
	}
}

// WithHooks registers graph options such as measure.GraphMeasure or drawer.GraphDrawer.
// Hooks run in registration order.
func WithHooks(hooks ...model.GraphOption) Option {
	return func(g *Graph) {
		g.hooks = append(g.hooks, hooks...)
	}
}
