package recursive

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// Reader is a scalar view of an image addressed by pixel offset.
type Reader interface {
	Value(pixel int) float64
	Offset(idx []int) int
	Stride(axis int) int
	BufferedRegion() image.Region
}

// Writer is a writable scalar view of an image addressed by pixel offset.
type Writer interface {
	SetValue(pixel int, v float64)
	Offset(idx []int) int
	Stride(axis int) int
	BufferedRegion() image.Region
}

// Apply filters every line of region along axis, reading from src and writing to dst. Lines are spread over
// the workers of req. src and dst may be views of the same buffer.
func Apply(ctx context.Context, req *pipeline.Request, src Reader, dst Writer, region image.Region, axis int, coeffs *Coefficients) error {
	if axis < 0 || axis >= region.Dimension() {
		return errors.Wrapf(pipeline.ErrInvalidParameter, "axis %d out of %d dimensions", axis, region.Dimension())
	}

	if !src.BufferedRegion().Contains(region) {
		return errors.Wrapf(pipeline.ErrRegionOutOfBounds, "%s is not buffered by the input", region)
	}

	if !dst.BufferedRegion().Contains(region) {
		return errors.Wrapf(pipeline.ErrRegionOutOfBounds, "%s is not buffered by the output", region)
	}

	if region.Empty() {
		return nil
	}

	length := region.Size[axis]
	srcStride, dstStride := src.Stride(axis), dst.Stride(axis)

	return req.Split(ctx, region, axis, func(ctx context.Context, sub image.Region) error {
		line := make([]float64, length)

		var scratch []float64

		image.ForEachLine(sub, axis, func(start []int) {
			srcOff := src.Offset(start)
			for i := range line {
				line[i] = src.Value(srcOff + i*srcStride)
			}

			scratch = coeffs.FilterLine(line, line, scratch)

			dstOff := dst.Offset(start)
			for i, v := range line {
				dst.SetValue(dstOff+i*dstStride, v)
			}
		})

		return ctx.Err()
	})
}
