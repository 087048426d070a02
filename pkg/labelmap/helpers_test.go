package labelmap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/labelmap"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

const fg = uint8(255)

func fillBox(img *image.Image[uint8], index, size []int) {
	image.ForEachIndex(image.NewRegion(index, size), func(idx []int) {
		img.Set(idx, fg)
	})
}

func setPixels(img *image.Image[uint8], points ...[]int) {
	for _, p := range points {
		img.Set(p, fg)
	}
}

// run executes node on inputs, outside of any graph, over the largest region of its output.
func run(t *testing.T, node pipeline.Node, workers int, inputs ...pipeline.DataObject) (pipeline.DataObject, error) {
	t.Helper()

	infos := make([]image.Information, len(inputs))
	for i, in := range inputs {
		infos[i] = in.Information()
	}

	info, err := node.OutputInformation(infos)
	require.NoError(t, err)

	req := pipeline.NewRequest(info, info.LargestRegion, workers, inputs...)

	return node.Execute(context.Background(), req)
}

func label(t *testing.T, img *image.Image[uint8], fullyConnected bool) *labelmap.Map {
	t.Helper()

	labeler := labelmap.NewLabeler[uint8]("labeler")
	labeler.SetFullyConnected(fullyConnected)

	out, err := run(t, labeler, 4, img)
	require.NoError(t, err)

	return out.(*labelmap.Map)
}

func shapes(t *testing.T, m *labelmap.Map) *labelmap.Map {
	t.Helper()

	out, err := run(t, labelmap.NewShapeFilter("shape"), 4, m)
	require.NoError(t, err)

	return out.(*labelmap.Map)
}

func sizes(m *labelmap.Map) map[labelmap.Label]int {
	res := make(map[labelmap.Label]int, m.Len())
	for _, obj := range m.Objects() {
		res[obj.Label()] = obj.NumberOfPixels()
	}

	return res
}
