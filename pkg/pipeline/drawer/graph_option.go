package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/pipeline/measure"
	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

type graphDrawer struct {
	Drawer
	m measure.Measure
}

func (gd *graphDrawer) New() error {
	return nil
}

func (gd *graphDrawer) PrepareNode(inputs []*model.NodeInfo, node *model.NodeInfo) error {
	err := gd.AddNode(node.Label())
	if err != nil {
		return err
	}

	linked := make(map[string]struct{}, len(inputs))

	for _, input := range inputs {
		if _, ok := linked[input.Label()]; ok {
			continue
		}

		linked[input.Label()] = struct{}{}

		err = gd.AddLink(input.Label(), node.Label())
		if err != nil {
			return err
		}
	}

	return nil
}

func (gd *graphDrawer) OnRegionRequested(_, _ *model.NodeInfo, _ int) error {
	return nil
}

func (gd *graphDrawer) OnNodeExecuted(_ *model.NodeInfo, _ time.Duration) error {
	return nil
}

func (gd *graphDrawer) OnNodeSkipped(_ *model.NodeInfo) error {
	return nil
}

func (gd *graphDrawer) AfterUpdate(_ *model.NodeInfo, _ time.Duration) error {
	return nil
}

func (gd *graphDrawer) Finish() error {
	if gd.m != nil {
		err := gd.AddMeasure(gd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := gd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw graph")
	}

	return nil
}

// GraphDrawer returns a graph option drawing the graph when it is closed.
// When measure is not nil, nodes and links are annotated with its metrics.
// The measure option must be registered before the drawer so that metrics exist when it finishes.
func GraphDrawer(drawer Drawer, measure measure.Measure) model.GraphOption {
	return &graphDrawer{drawer, measure}
}
