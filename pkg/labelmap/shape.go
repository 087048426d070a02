package labelmap

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// eigenTolerance is the relative magnitude below which a principal moment is considered null.
const eigenTolerance = 1e-12

// ShapeFilter computes the shape attributes of every object of a label map. Its output is a copy
// of the input map: objects keep their lines and get new attributes.
type ShapeFilter struct {
	pipeline.Filter
}

func NewShapeFilter(name string) *ShapeFilter {
	return &ShapeFilter{Filter: pipeline.NewFilter(name)}
}

func (s *ShapeFilter) Execute(ctx context.Context, req *pipeline.Request) (pipeline.DataObject, error) {
	in, err := inputMap(req, s.Name())
	if err != nil {
		return nil, err
	}

	out := in.Copy()
	objects := out.Objects()

	err = req.ForEach(ctx, len(objects), func(_ context.Context, idx int) error {
		return computeShape(objects[idx], out.info)
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func inputMap(req *pipeline.Request, name string) (*Map, error) {
	in, err := pipeline.Input[*Map](req, 0)
	if errors.Is(err, pipeline.ErrInputMustBeSet) {
		return nil, errors.Wrapf(pipeline.ErrEmptyInput, "%s has no label map", name)
	}

	if err != nil {
		return nil, err
	}

	if in == nil {
		return nil, errors.Wrapf(pipeline.ErrEmptyInput, "%s has no label map", name)
	}

	return in, nil
}

// computeShape accumulates the first and second order moments of the object lines in index space,
// relative to the first pixel of the object, then maps them to physical space.
func computeShape(obj *Object, info image.Information) error {
	largest := info.LargestRegion
	dim := largest.Dimension()

	if obj.pixels == 0 || len(obj.lines) == 0 {
		return errors.Wrapf(pipeline.ErrEmptyInput, "label %d has no pixel", obj.label)
	}

	ref := obj.lines[0].Index
	lower := append([]int(nil), ref...)
	upper := append([]int(nil), ref...)

	sum := make([]float64, dim)
	sq := make([]float64, dim*dim)
	coords := make([]float64, dim)
	onBorder := 0

	for _, line := range obj.lines {
		length := float64(line.Length)
		start := float64(line.Index[0] - ref[0])

		for axis := 1; axis < dim; axis++ {
			coords[axis] = float64(line.Index[axis] - ref[axis])
		}

		sx := length*start + length*(length-1)/2
		sxx := length*start*start + start*length*(length-1) + (length-1)*length*(2*length-1)/6

		sum[0] += sx
		sq[0] += sxx

		for a := 1; a < dim; a++ {
			sum[a] += length * coords[a]
			sq[a] += sx * coords[a]
			sq[a*dim] += sx * coords[a]

			for b := 1; b < dim; b++ {
				sq[a*dim+b] += length * coords[a] * coords[b]
			}
		}

		updateBounds(lower, upper, line)
		onBorder += pixelsOnBorder(line, largest)
	}

	n := float64(obj.pixels)
	mean := make([]float64, dim)
	centroid := make([]float64, dim)

	for a := 0; a < dim; a++ {
		mean[a] = sum[a] / n
		centroid[a] = float64(ref[a]) + mean[a]
	}

	cov := mat.NewDense(dim, dim, nil)
	for a := 0; a < dim; a++ {
		for b := 0; b < dim; b++ {
			cov.Set(a, b, sq[a*dim+b]/n-mean[a]*mean[b])
		}
	}

	transform := mat.NewDense(dim, dim, nil)
	for row := 0; row < dim; row++ {
		for col := 0; col < dim; col++ {
			transform.Set(row, col, info.Direction[row*dim+col]*info.Spacing[col])
		}
	}

	var tmp, physical mat.Dense
	tmp.Mul(transform, cov)
	physical.Mul(&tmp, transform.T())

	sym := mat.NewSymDense(dim, nil)
	for a := 0; a < dim; a++ {
		for b := a; b < dim; b++ {
			sym.SetSym(a, b, (physical.At(a, b)+physical.At(b, a))/2)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return errors.Errorf("eigen decomposition failed for label %d", obj.label)
	}

	moments := clampMoments(eig.Values(nil))

	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	physicalSize := n * info.PixelVolume()

	obj.SetShape(&Shape{
		BoundingBox:      boundingBox(lower, upper),
		Centroid:         info.PhysicalPoint(nil, centroid),
		PrincipalMoments: moments,
		PrincipalAxes:    mat.DenseCopyOf(vectors.T()),
	})

	obj.SetAttribute(AttributeNumberOfPixels, n)
	obj.SetAttribute(AttributePhysicalSize, physicalSize)
	obj.SetAttribute(AttributeNumberOfPixelsOnBorder, float64(onBorder))
	obj.SetAttribute(AttributeEquivalentSphericalRadius, equivalentRadius(physicalSize, dim))

	if dim < 2 {
		obj.SetAttribute(AttributeElongation, 1)
		obj.SetAttribute(AttributeFlatness, 1)

		return nil
	}

	obj.SetAttribute(AttributeElongation, momentRatio(moments[dim-1], moments[dim-2]))
	obj.SetAttribute(AttributeFlatness, momentRatio(moments[1], moments[0]))

	return nil
}

func updateBounds(lower, upper []int, line Line) {
	for axis, v := range line.Index {
		last := v
		if axis == 0 {
			last = line.Last()
		}

		if v < lower[axis] {
			lower[axis] = v
		}

		if last > upper[axis] {
			upper[axis] = last
		}
	}
}

func boundingBox(lower, upper []int) image.Region {
	size := make([]int, len(lower))
	for axis := range lower {
		size[axis] = upper[axis] - lower[axis] + 1
	}

	return image.NewRegion(lower, size)
}

// pixelsOnBorder counts the pixels of line that lie on a face of largest.
func pixelsOnBorder(line Line, largest image.Region) int {
	for axis := 1; axis < largest.Dimension(); axis++ {
		if line.Index[axis] == largest.Index[axis] || line.Index[axis] == largest.Upper(axis) {
			return line.Length
		}
	}

	if largest.Size[0] == 1 {
		return line.Length
	}

	count := 0
	if line.Index[0] == largest.Index[0] {
		count++
	}

	if line.Last() == largest.Upper(0) {
		count++
	}

	return count
}

// clampMoments zeroes the moments that are only rounding noise.
func clampMoments(moments []float64) []float64 {
	largest := 0.0
	for _, m := range moments {
		largest = math.Max(largest, math.Abs(m))
	}

	for i, m := range moments {
		if m <= eigenTolerance*largest {
			moments[i] = 0
		}
	}

	return moments
}

// momentRatio returns sqrt(num/den), 1 when both are null and +Inf when only den is.
func momentRatio(num, den float64) float64 {
	if den == 0 {
		if num == 0 {
			return 1
		}

		return math.Inf(1)
	}

	return math.Sqrt(num / den)
}

// equivalentRadius returns the radius of the dim-dimensional ball of the given volume.
func equivalentRadius(volume float64, dim int) float64 {
	d := float64(dim)
	unitBall := math.Pow(math.Pi, d/2) / math.Gamma(d/2+1)

	return math.Pow(volume/unitBall, 1/d)
}
