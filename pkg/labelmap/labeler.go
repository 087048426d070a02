package labelmap

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// DefaultForeground returns the largest value of integer pixel types and 1 for floating point ones.
func DefaultForeground[T image.Pixel]() T {
	half := 0.5
	if T(half) != 0 {
		return 1
	}

	v := T(1)
	for v*2 > v {
		v *= 2
	}

	return v + (v - 1)
}

// Labeler groups the foreground pixels of a binary image into connected objects. Labels are
// dense, starting at 1, in scan order of the first pixel of every object.
type Labeler[T image.Pixel] struct {
	pipeline.Filter
	foreground     T
	fullyConnected bool
	maxLabel       Label
}

// NewLabeler creates a labeler with face connectivity and the default foreground of T.
func NewLabeler[T image.Pixel](name string) *Labeler[T] {
	return &Labeler[T]{
		Filter:     pipeline.NewFilter(name),
		foreground: DefaultForeground[T](),
		maxLabel:   math.MaxUint32,
	}
}

func (l *Labeler[T]) SetForegroundValue(v T) {
	if l.foreground != v {
		l.foreground = v
		l.Modified()
	}
}

func (l *Labeler[T]) ForegroundValue() T {
	return l.foreground
}

// SetFullyConnected selects full connectivity (any shared corner) instead of face connectivity.
func (l *Labeler[T]) SetFullyConnected(full bool) {
	if l.fullyConnected != full {
		l.fullyConnected = full
		l.Modified()
	}
}

func (l *Labeler[T]) FullyConnected() bool {
	return l.fullyConnected
}

// SetMaxLabel bounds the number of objects. Labeling more fails with ErrNumericOverflow.
func (l *Labeler[T]) SetMaxLabel(limit Label) {
	if l.maxLabel != limit {
		l.maxLabel = limit
		l.Modified()
	}
}

func (l *Labeler[T]) MaxLabel() Label {
	return l.maxLabel
}

func (l *Labeler[T]) OutputInformation(inputs []image.Information) (image.Information, error) {
	info, err := l.Filter.OutputInformation(inputs)
	if err != nil {
		return info, err
	}

	if info.Components != 1 {
		return info, errors.Wrapf(pipeline.ErrDimensionMismatch, "%s expects a scalar image, got %d components", l.Name(), info.Components)
	}

	return info, nil
}

type run struct {
	index  []int
	length int
	line   int
}

func (r run) last() int {
	return r.index[0] + r.length - 1
}

func (l *Labeler[T]) Execute(ctx context.Context, req *pipeline.Request) (pipeline.DataObject, error) {
	if l.maxLabel == 0 {
		return nil, errors.Wrap(pipeline.ErrInvalidParameter, "max label must be positive")
	}

	in, err := pipeline.Input[*image.Image[T]](req, 0)
	if err != nil {
		return nil, err
	}

	region := in.LargestRegion()
	if !in.BufferedRegion().Contains(region) {
		return nil, errors.Wrapf(pipeline.ErrRegionOutOfBounds, "%s needs the whole input, got %s", l.Name(), in.BufferedRegion())
	}

	strides := lineStrides(region)
	parts := req.Partition(region, 0)
	partRuns := make([][]run, len(parts))

	err = req.ForEach(ctx, len(parts), func(_ context.Context, idx int) error {
		partRuns[idx] = l.extractRuns(in, parts[idx], region, strides)

		return nil
	})
	if err != nil {
		return nil, err
	}

	var runs []run
	for _, r := range partRuns {
		runs = append(runs, r...)
	}

	uf := l.merge(runs, region, strides)

	out := NewMap(req.Info)

	labels := make([]Label, len(runs))
	objects := make([]*Object, 0)

	for i, r := range runs {
		root := uf.find(i)
		if labels[root] == 0 {
			if Label(len(objects)) >= l.maxLabel {
				return nil, errors.Wrapf(pipeline.ErrNumericOverflow, "more than %d objects", l.maxLabel)
			}

			labels[root] = Label(len(objects) + 1)
			objects = append(objects, NewObject(labels[root]))
		}

		objects[labels[root]-1].AddLine(r.index, r.length)
	}

	for _, obj := range objects {
		err = out.Add(obj)
		if err != nil {
			return nil, err
		}
	}

	req.Logger.WithFields(logrus.Fields{
		"runs":    len(runs),
		"objects": len(objects),
	}).Debug("image labeled")

	return out, nil
}

// extractRuns lists the foreground runs of part in scan order.
func (l *Labeler[T]) extractRuns(in *image.Image[T], part, region image.Region, strides []int) []run {
	var runs []run

	pixels := in.Pixels()
	comps := in.Components()

	image.ForEachLine(part, 0, func(start []int) {
		off := in.Offset(start)
		line := lineNumber(start, region, strides)
		begin := -1

		for x := 0; x <= part.Size[0]; x++ {
			fg := x < part.Size[0] && pixels[(off+x)*comps] == l.foreground

			switch {
			case fg && begin < 0:
				begin = x
			case !fg && begin >= 0:
				index := append([]int(nil), start...)
				index[0] = part.Index[0] + begin
				runs = append(runs, run{index: index, length: x - begin, line: line})
				begin = -1
			}
		}
	})

	return runs
}

// merge joins the runs of neighbouring lines that touch. Runs must be in scan order.
func (l *Labeler[T]) merge(runs []run, region image.Region, strides []int) *unionFind {
	uf := newUnionFind(len(runs))
	if len(runs) == 0 {
		return uf
	}

	numLines := image.NumberOfLines(region, 0)
	lineStart := make([]int, numLines+1)

	next := 0
	for line := 0; line < numLines; line++ {
		lineStart[line] = next
		for next < len(runs) && runs[next].line == line {
			next++
		}
	}

	lineStart[numLines] = len(runs)

	slack := 0
	if l.fullyConnected {
		slack = 1
	}

	offsets := previousNeighbours(region.Dimension(), l.fullyConnected)
	coords := make([]int, region.Dimension())

	for i, r := range runs {
		for _, offset := range offsets {
			inside := true

			for axis := 1; axis < len(coords); axis++ {
				coords[axis] = r.index[axis] + offset[axis]
				if coords[axis] < region.Index[axis] || coords[axis] > region.Upper(axis) {
					inside = false

					break
				}
			}

			if !inside {
				continue
			}

			line := lineNumber(coords, region, strides)
			for j := lineStart[line]; j < lineStart[line+1]; j++ {
				other := runs[j]
				if other.index[0] > r.last()+slack {
					break
				}

				if other.last()+slack >= r.index[0] {
					uf.union(i, j)
				}
			}
		}
	}

	return uf
}

// lineStrides returns, per axis, the distance in lines between two neighbours along that axis.
// Axis 0 has no stride since lines run along it.
func lineStrides(region image.Region) []int {
	strides := make([]int, region.Dimension())

	stride := 1
	for axis := 1; axis < region.Dimension(); axis++ {
		strides[axis] = stride
		stride *= region.Size[axis]
	}

	return strides
}

func lineNumber(idx []int, region image.Region, strides []int) int {
	line := 0
	for axis := 1; axis < len(idx); axis++ {
		line += (idx[axis] - region.Index[axis]) * strides[axis]
	}

	return line
}

// previousNeighbours returns the offsets to the neighbouring lines that come earlier in scan order.
// Offsets along axis 0 are always 0.
func previousNeighbours(dim int, fullyConnected bool) [][]int {
	total := 1
	for axis := 1; axis < dim; axis++ {
		total *= 3
	}

	var offsets [][]int

	for code := 0; code < total; code++ {
		offset := make([]int, dim)
		nonZero := 0
		highest := 0

		c := code
		for axis := 1; axis < dim; axis++ {
			offset[axis] = c%3 - 1
			c /= 3

			if offset[axis] != 0 {
				nonZero++
				highest = offset[axis]
			}
		}

		if nonZero == 0 || highest != -1 {
			continue
		}

		if !fullyConnected && nonZero > 1 {
			continue
		}

		offsets = append(offsets, offset)
	}

	return offsets
}

var _ pipeline.Node = (*Labeler[uint8])(nil)
