package recursive

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// Filter smooths, or differentiates, a scalar image along one axis. Its output is a float64 image.
type Filter[T image.Pixel] struct {
	pipeline.Filter
	sigma                float64
	order                Order
	direction            int
	normalizeAcrossScale bool
}

// New creates a zero order filter along axis 0 with sigma 1.
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

func (f *Filter[T]) SetOrder(order Order) {
	if f.order != order {
		f.order = order
		f.Modified()
	}
}

func (f *Filter[T]) Order() Order {
	return f.order
}

// SetDirection selects the axis lines are filtered along.
func (f *Filter[T]) SetDirection(axis int) {
	if f.direction != axis {
		f.direction = axis
		f.Modified()
	}
}

func (f *Filter[T]) Direction() int {
	return f.direction
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

	if info.Components != 1 {
		return info, errors.Wrapf(pipeline.ErrDimensionMismatch, "%s expects a scalar image, got %d components", f.Name(), info.Components)
	}

	dim := info.LargestRegion.Dimension()
	if f.direction < 0 || f.direction >= dim {
		return info, errors.Wrapf(pipeline.ErrInvalidParameter, "direction %d out of %d dimensions", f.direction, dim)
	}

	return info, nil
}

// InputRequestedRegions extends the output request to the whole input extent along the filtering axis.
func (f *Filter[T]) InputRequestedRegions(out image.Region, inputs []image.Information) ([]image.Region, error) {
	if len(inputs) != 1 {
		return nil, errors.Wrapf(pipeline.ErrInputMustBeSet, "%s expects one input, got %d", f.Name(), len(inputs))
	}

	largest := inputs[0].LargestRegion

	return []image.Region{out.WithAxis(f.direction, largest.Index[f.direction], largest.Size[f.direction])}, nil
}

func (f *Filter[T]) Execute(ctx context.Context, req *pipeline.Request) (pipeline.DataObject, error) {
	in, err := pipeline.Input[*image.Image[T]](req, 0)
	if err != nil {
		return nil, err
	}

	geo := in.Geometry()

	coeffs, err := NewCoefficients(f.sigma, geo.Spacing[f.direction], f.order, f.normalizeAcrossScale)
	if err != nil {
		return nil, err
	}

	largest := in.LargestRegion()
	region := req.Region.WithAxis(f.direction, largest.Index[f.direction], largest.Size[f.direction])

	out, err := image.NewBuffered[float64](req.Info, region)
	if err != nil {
		return nil, errors.Wrap(err, "unable to allocate output")
	}

	err = Apply(ctx, req, in, out, region, f.direction, coeffs)
	if err != nil {
		return nil, err
	}

	return out, nil
}

var _ pipeline.Node = (*Filter[float64])(nil)
