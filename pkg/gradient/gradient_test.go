package gradient_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-image-pipeline/internal/logger"
	"github.com/askiada/go-image-pipeline/pkg/gradient"
	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

func runGradient[T image.Pixel](t *testing.T, input *image.Image[T], sigma float64) (*image.Image[float64], error) {
	t.Helper()

	g, err := pipeline.New(pipeline.WithWorkers(4), pipeline.WithLogger(logger.Discard()))
	require.NoError(t, err)

	srcID, err := g.Add(pipeline.NewSource("input", input))
	require.NoError(t, err)

	filter := gradient.New[T]("gradient")
	filter.SetSigma(sigma)

	id, err := g.Add(filter, srcID)
	require.NoError(t, err)

	err = g.Update(context.Background(), id)
	if err != nil {
		return nil, err
	}

	return pipeline.OutputOf[*image.Image[float64]](g, id)
}

func TestGradientConstant(t *testing.T) {
	t.Parallel()

	input := image.NewScalar[uint8](16, 12)
	input.Fill(200)

	out, err := runGradient(t, input, 1.5)
	require.NoError(t, err)

	assert.Equal(t, 2, out.Components())

	for _, v := range out.Pixels() {
		assert.InDelta(t, 0, v, 1e-9)
	}
}

func TestGradientRamp(t *testing.T) {
	t.Parallel()

	input := image.NewScalar[float32](64, 16)
	image.ForEachIndex(input.LargestRegion(), func(idx []int) {
		input.Set(idx, float32(idx[0]))
	})

	out, err := runGradient(t, input, 2)
	require.NoError(t, err)

	inner := image.NewRegion([]int{16, 0}, []int{32, 16})
	image.ForEachIndex(inner, func(idx []int) {
		assert.InDelta(t, 1.0, out.Component(idx, 0), 1e-3)
		assert.InDelta(t, 0.0, out.Component(idx, 1), 1e-9)
	})
}

func TestGradientAnisotropic3D(t *testing.T) {
	t.Parallel()

	info := image.NewInformation(image.RegionFromSize(6, 5, 64), 1)
	info.Spacing = []float64{1, 2, 0.5}
	info.Origin = []float64{-3, 4, 10}

	input := image.New[float64](info)
	image.ForEachIndex(input.LargestRegion(), func(idx []int) {
		// 2 * physical z
		input.Set(idx, float64(idx[2]))
	})

	out, err := runGradient(t, input, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Components())
	assert.Equal(t, info.Spacing, out.Geometry().Spacing)
	assert.Equal(t, info.Origin, out.Geometry().Origin)

	inner := image.NewRegion([]int{0, 0, 24}, []int{6, 5, 16})
	image.ForEachIndex(inner, func(idx []int) {
		assert.InDelta(t, 0.0, out.Component(idx, 0), 1e-9)
		assert.InDelta(t, 0.0, out.Component(idx, 1), 1e-9)
		assert.InDelta(t, 2.0, out.Component(idx, 2), 1e-3)
	})
}

func TestGradient1D(t *testing.T) {
	t.Parallel()

	input := image.NewScalar[int32](64)
	image.ForEachIndex(input.LargestRegion(), func(idx []int) {
		input.Set(idx, int32(-3*idx[0]))
	})

	out, err := runGradient(t, input, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Components())
	assert.InDelta(t, -3.0, out.At([]int{32}), 1e-6)
}

func TestGradientErrors(t *testing.T) {
	t.Parallel()

	_, err := runGradient(t, image.NewScalar[uint8](4, 4), 0)
	require.ErrorIs(t, err, pipeline.ErrInvalidParameter)

	_, err = runGradient(t, image.NewScalar[uint8](4, 4), -2)
	require.ErrorIs(t, err, pipeline.ErrInvalidParameter)

	vector := image.New[uint8](image.NewInformation(image.RegionFromSize(4, 4), 2))
	_, err = runGradient(t, vector, 1)
	require.ErrorIs(t, err, pipeline.ErrDimensionMismatch)

	_, err = runGradient(t, image.New[uint8](image.NewInformation(image.Region{}, 1)), 1)
	require.ErrorIs(t, err, pipeline.ErrInvalidParameter)
}

func TestGradientSigmaBelowSpacing(t *testing.T) {
	t.Parallel()

	input := image.NewScalar[float32](32, 8)
	image.ForEachIndex(input.LargestRegion(), func(idx []int) {
		input.Set(idx, float32(idx[0]))
	})

	geo := input.Geometry()
	geo.Spacing = []float64{1000, 1}
	input.SetGeometry(geo)

	g, err := pipeline.New(pipeline.WithLogger(logger.Discard()))
	require.NoError(t, err)

	srcID, err := g.Add(pipeline.NewSource("input", input))
	require.NoError(t, err)

	filter := gradient.New[float32]("gradient")
	filter.SetSigma(1)

	id, err := g.Add(filter, srcID)
	require.NoError(t, err)

	err = g.Update(context.Background(), id)
	require.ErrorIs(t, err, pipeline.ErrInvalidParameter)

	state, err := g.State(id)
	require.NoError(t, err)
	assert.Equal(t, pipeline.Stale, state)

	_, err = pipeline.OutputOf[*image.Image[float64]](g, id)
	require.ErrorIs(t, err, pipeline.ErrNotUpToDate)

	out, err := runGradient(t, input, 10)
	require.NoError(t, err)

	for _, v := range out.Pixels() {
		assert.False(t, math.IsNaN(v))
	}
}

func TestGradientLazy(t *testing.T) {
	t.Parallel()

	g, err := pipeline.New(pipeline.WithLogger(logger.Discard()))
	require.NoError(t, err)

	input := image.NewScalar[float64](32, 32)
	image.ForEachIndex(input.LargestRegion(), func(idx []int) {
		input.Set(idx, float64(idx[1]))
	})

	srcID, err := g.Add(pipeline.NewSource("input", input))
	require.NoError(t, err)

	filter := gradient.New[float64]("gradient")
	id, err := g.Add(filter, srcID)
	require.NoError(t, err)

	require.NoError(t, g.Update(context.Background(), id))
	first, err := pipeline.OutputOf[*image.Image[float64]](g, id)
	require.NoError(t, err)

	require.NoError(t, g.Update(context.Background(), id))
	second, err := pipeline.OutputOf[*image.Image[float64]](g, id)
	require.NoError(t, err)
	assert.Same(t, first, second)

	filter.SetNormalizeAcrossScale(true)
	filter.SetSigma(2)
	require.NoError(t, g.Update(context.Background(), id))

	third, err := pipeline.OutputOf[*image.Image[float64]](g, id)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.InDelta(t, 2.0, third.Component([]int{16, 16}, 1), 1e-3)
}
