package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-image-pipeline/internal/logger"
	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

// addNode sums its inputs and adds a constant.
type addNode struct {
	pipeline.Filter
	value      float64
	executions int
	fail       error
	window     *image.Region
}

func newAddNode(name string, value float64) *addNode {
	return &addNode{Filter: pipeline.NewFilter(name), value: value}
}

func (n *addNode) SetValue(value float64) {
	n.value = value
	n.Modified()
}

func (n *addNode) InputRequestedRegions(out image.Region, inputs []image.Information) ([]image.Region, error) {
	regions := make([]image.Region, len(inputs))
	for i := range inputs {
		if n.window != nil {
			regions[i] = n.window.Clone()

			continue
		}

		regions[i] = out.Clone()
	}

	return regions, nil
}

func (n *addNode) Execute(ctx context.Context, req *pipeline.Request) (pipeline.DataObject, error) {
	n.executions++

	if n.fail != nil {
		return nil, n.fail
	}

	out := image.New[float64](req.Info)

	err := out.Allocate(req.Region)
	if err != nil {
		return nil, err
	}

	inputs := make([]*image.Image[float64], len(req.Inputs))
	for i := range req.Inputs {
		in, err := pipeline.Input[*image.Image[float64]](req, i)
		if err != nil {
			return nil, err
		}

		inputs[i] = in
	}

	err = req.Split(ctx, req.Region, 0, func(_ context.Context, sub image.Region) error {
		image.ForEachIndex(sub, func(idx []int) {
			sum := n.value
			for _, in := range inputs {
				if in.BufferedRegion().IsInside(idx) {
					sum += in.At(idx)
				}
			}

			out.Set(idx, sum)
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func newGraph(t *testing.T, hooks ...model.GraphOption) *pipeline.Graph {
	t.Helper()

	g, err := pipeline.New(
		pipeline.WithWorkers(4),
		pipeline.WithLogger(logger.Discard()),
		pipeline.WithHooks(hooks...),
	)
	require.NoError(t, err)

	return g
}

func constantImage(value float64, size ...int) *image.Image[float64] {
	img := image.NewScalar[float64](size...)
	img.Fill(value)

	return img
}
