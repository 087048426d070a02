package measure

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

var errUnknownNode = errors.New("node has no metric")

type graphMeasure struct {
	Measure
}

func (gm *graphMeasure) New() error {
	return nil
}

func (gm *graphMeasure) PrepareNode(_ []*model.NodeInfo, node *model.NodeInfo) error {
	gm.AddMetric(node.Label(), node.Workers)

	return nil
}

func (gm *graphMeasure) metric(node *model.NodeInfo) (Metric, error) {
	mt := gm.GetMetric(node.Label())
	if mt == nil {
		return nil, errors.Wrap(errUnknownNode, node.Label())
	}

	return mt, nil
}

func (gm *graphMeasure) OnRegionRequested(input, node *model.NodeInfo, pixels int) error {
	mt, err := gm.metric(node)
	if err != nil {
		return err
	}

	mt.AddRequest(input.Label(), pixels)

	return nil
}

func (gm *graphMeasure) OnNodeExecuted(node *model.NodeInfo, computationDuration time.Duration) error {
	mt, err := gm.metric(node)
	if err != nil {
		return err
	}

	mt.AddDuration(computationDuration)

	return nil
}

func (gm *graphMeasure) OnNodeSkipped(node *model.NodeInfo) error {
	mt, err := gm.metric(node)
	if err != nil {
		return err
	}

	mt.AddSkip()

	return nil
}

func (gm *graphMeasure) AfterUpdate(node *model.NodeInfo, totalDuration time.Duration) error {
	mt, err := gm.metric(node)
	if err != nil {
		return err
	}

	mt.SetTotalDuration(totalDuration)

	return nil
}

func (gm *graphMeasure) Finish() error {
	return nil
}

// GraphMeasure returns a graph option recording node executions in measure.
func GraphMeasure(measure Measure) model.GraphOption {
	return &graphMeasure{measure}
}
