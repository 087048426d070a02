// Package gradient computes the gradient of a scalar image with recursive Gaussian derivative filters.
//
// Component i of the output is the derivative along axis i: a first order pass along axis i followed by zero order
// passes along every other axis, in increasing axis order. The last pass of each component writes straight into
// the output through a channel adaptor.
package gradient

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/adaptor"
	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
	"github.com/askiada/go-image-pipeline/pkg/recursive"
)

// Filter produces an N-component float64 image from an N-dimensional scalar image.
type Filter[T image.Pixel] struct {
	pipeline.Filter
	sigma                float64
	normalizeAcrossScale bool
}

// New creates a gradient filter with sigma 1.
func New[T image.Pixel](name string) *Filter[T] {
	return &Filter[T]{
		Filter: pipeline.NewFilter(name),
		sigma:  1,
	}
}

func (f *Filter[T]) SetSigma(sigma float64) {
	if f.sigma != sigma {
		f.sigma = sigma
		f.Modified()
	}
}

func (f *Filter[T]) Sigma() float64 {
	return f.sigma
}

func (f *Filter[T]) SetNormalizeAcrossScale(normalize bool) {
	if f.normalizeAcrossScale != normalize {
		f.normalizeAcrossScale = normalize
		f.Modified()
	}
}

func (f *Filter[T]) NormalizeAcrossScale() bool {
	return f.normalizeAcrossScale
}

func (f *Filter[T]) OutputInformation(inputs []image.Information) (image.Information, error) {
	info, err := f.Filter.OutputInformation(inputs)
	if err != nil {
		return info, err
	}

	dim := info.LargestRegion.Dimension()
	if dim < 1 {
		return info, errors.Wrap(pipeline.ErrInvalidParameter, "gradient needs at least one dimension")
	}

	if info.Components != 1 {
		return info, errors.Wrapf(pipeline.ErrDimensionMismatch, "%s expects a scalar image, got %d components", f.Name(), info.Components)
	}

	info.Components = dim

	return info, nil
}

func (f *Filter[T]) Execute(ctx context.Context, req *pipeline.Request) (pipeline.DataObject, error) {
	in, err := pipeline.Input[*image.Image[T]](req, 0)
	if err != nil {
		return nil, err
	}

	dim := in.Dimension()
	spacing := in.Geometry().Spacing

	smoothing := make([]*recursive.Coefficients, dim)
	derivative := make([]*recursive.Coefficients, dim)

	for axis := 0; axis < dim; axis++ {
		smoothing[axis], err = recursive.NewCoefficients(f.sigma, spacing[axis], recursive.ZeroOrder, false)
		if err != nil {
			return nil, err
		}

		derivative[axis], err = recursive.NewCoefficients(f.sigma, spacing[axis], recursive.FirstOrder, f.normalizeAcrossScale)
		if err != nil {
			return nil, err
		}
	}

	region := in.LargestRegion()

	out := image.New[float64](req.Info)

	channel, err := adaptor.NewChannel(out, 0)
	if err != nil {
		return nil, err
	}

	var tmp *image.Image[float64]
	if dim > 1 {
		tmp = image.New[float64](image.NewInformation(region, 1))
	}

	for component := 0; component < dim; component++ {
		err = channel.SetIndex(component)
		if err != nil {
			return nil, err
		}

		passes := passOrder(dim, component)

		var (
			src recursive.Reader = in
			dst recursive.Writer
		)

		for p, axis := range passes {
			coeffs := smoothing[axis]
			if axis == component {
				coeffs = derivative[axis]
			}

			dst = tmp
			if p == len(passes)-1 {
				dst = channel
			}

			err = recursive.Apply(ctx, req, src, dst, region, axis, coeffs)
			if err != nil {
				return nil, errors.Wrapf(err, "component %d, axis %d", component, axis)
			}

			src = tmp
		}
	}

	return out, nil
}

// passOrder returns the axes filtered for component: the derivative axis first, then every other axis in
// increasing order.
func passOrder(dim, component int) []int {
	passes := make([]int, 0, dim)
	passes = append(passes, component)

	for axis := 0; axis < dim; axis++ {
		if axis != component {
			passes = append(passes, axis)
		}
	}

	return passes
}

var _ pipeline.Node = (*Filter[float64])(nil)
