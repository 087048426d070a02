package labelmap

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// BinaryRenderer draws the objects of a label map with a single foreground value.
type BinaryRenderer[T image.Pixel] struct {
	pipeline.Filter
	foreground T
	background T
}

// NewBinaryRenderer draws objects with the default foreground of T over a zero background.
func NewBinaryRenderer[T image.Pixel](name string) *BinaryRenderer[T] {
	return &BinaryRenderer[T]{
		Filter:     pipeline.NewFilter(name),
		foreground: DefaultForeground[T](),
	}
}

func (r *BinaryRenderer[T]) SetForegroundValue(v T) {
	if r.foreground != v {
		r.foreground = v
		r.Modified()
	}
}

func (r *BinaryRenderer[T]) ForegroundValue() T {
	return r.foreground
}

func (r *BinaryRenderer[T]) SetBackgroundValue(v T) {
	if r.background != v {
		r.background = v
		r.Modified()
	}
}

func (r *BinaryRenderer[T]) BackgroundValue() T {
	return r.background
}

func (r *BinaryRenderer[T]) OutputInformation(inputs []image.Information) (image.Information, error) {
	return scalarInformation(&r.Filter, inputs)
}

func (r *BinaryRenderer[T]) Execute(ctx context.Context, req *pipeline.Request) (pipeline.DataObject, error) {
	return render(ctx, req, r.Name(), r.background, func(*Object) (T, error) {
		return r.foreground, nil
	})
}

// LabelRenderer draws every object with its label.
type LabelRenderer[T image.Pixel] struct {
	pipeline.Filter
	background T
}

func NewLabelRenderer[T image.Pixel](name string) *LabelRenderer[T] {
	return &LabelRenderer[T]{Filter: pipeline.NewFilter(name)}
}

func (r *LabelRenderer[T]) SetBackgroundValue(v T) {
	if r.background != v {
		r.background = v
		r.Modified()
	}
}

func (r *LabelRenderer[T]) BackgroundValue() T {
	return r.background
}

func (r *LabelRenderer[T]) OutputInformation(inputs []image.Information) (image.Information, error) {
	return scalarInformation(&r.Filter, inputs)
}

func (r *LabelRenderer[T]) Execute(ctx context.Context, req *pipeline.Request) (pipeline.DataObject, error) {
	return render(ctx, req, r.Name(), r.background, func(obj *Object) (T, error) {
		v := T(obj.label)
		if float64(v) != float64(obj.label) {
			return v, errors.Wrapf(pipeline.ErrNumericOverflow, "label %d does not fit the output pixel type", obj.label)
		}

		return v, nil
	})
}

func scalarInformation(f *pipeline.Filter, inputs []image.Information) (image.Information, error) {
	info, err := f.OutputInformation(inputs)
	if err != nil {
		return info, err
	}

	info.Components = 1

	return info, nil
}

// render fills the requested region with background and draws, in parallel, the part of every
// object lines that falls inside it.
func render[T image.Pixel](
	ctx context.Context,
	req *pipeline.Request,
	name string,
	background T,
	value func(obj *Object) (T, error),
) (pipeline.DataObject, error) {
	in, err := inputMap(req, name)
	if err != nil {
		return nil, err
	}

	out, err := image.NewBuffered[T](req.Info, req.Region)
	if err != nil {
		return nil, errors.Wrap(err, "unable to allocate output")
	}

	out.Fill(background)

	objects := in.Objects()
	pixels := out.Pixels()

	err = req.ForEach(ctx, len(objects), func(_ context.Context, idx int) error {
		obj := objects[idx]

		v, err := value(obj)
		if err != nil {
			return err
		}

		for _, line := range obj.lines {
			size := make([]int, len(line.Index))
			for axis := range size {
				size[axis] = 1
			}

			size[0] = line.Length

			crop, ok := req.Region.Crop(image.NewRegion(line.Index, size))
			if !ok {
				continue
			}

			off := out.Offset(crop.Index)
			for x := 0; x < crop.Size[0]; x++ {
				pixels[off+x] = v
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

var (
	_ pipeline.Node = (*BinaryRenderer[uint8])(nil)
	_ pipeline.Node = (*LabelRenderer[uint8])(nil)
)
