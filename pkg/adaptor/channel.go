// Package adaptor provides views that let scalar algorithms read and write multi-component images in place.
package adaptor

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// Channel presents one component of a multi-component image as a scalar image. Reads and writes go
// straight to the underlying buffer, nothing is copied.
type Channel[T image.Pixel] struct {
	img   *image.Image[T]
	index int
	mtime uint64
}

// NewChannel creates a view of component index of img.
func NewChannel[T image.Pixel](img *image.Image[T], index int) (*Channel[T], error) {
	if img == nil {
		return nil, errors.Wrap(pipeline.ErrInputMustBeSet, "channel adaptor needs an image")
	}

	c := &Channel[T]{img: img, index: -1}

	err := c.SetIndex(index)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// SetIndex selects another component. It invalidates views derived from the previous one.
func (c *Channel[T]) SetIndex(index int) error {
	if index < 0 || index >= c.img.Components() {
		return errors.Wrapf(pipeline.ErrDimensionMismatch, "component %d out of %d", index, c.img.Components())
	}

	if index != c.index {
		c.index = index
		atomic.StoreUint64(&c.mtime, pipeline.Tick())
	}

	return nil
}

// Index returns the selected component.
func (c *Channel[T]) Index() int {
	return c.index
}

// MTime returns the clock value of the last index change.
func (c *Channel[T]) MTime() uint64 {
	return atomic.LoadUint64(&c.mtime)
}

// Image returns the adapted image.
func (c *Channel[T]) Image() *image.Image[T] {
	return c.img
}

func (c *Channel[T]) Get(idx []int) T {
	return c.img.Component(idx, c.index)
}

func (c *Channel[T]) Set(idx []int, v T) {
	c.img.SetComponent(idx, c.index, v)
}

func (c *Channel[T]) Value(pixel int) float64 {
	return float64(c.img.ComponentAt(pixel, c.index))
}

func (c *Channel[T]) SetValue(pixel int, v float64) {
	c.img.SetComponentAt(pixel, c.index, T(v))
}

// Information reports the adapted image with a single component.
func (c *Channel[T]) Information() image.Information {
	info := c.img.Information()
	info.Components = 1

	return info
}

func (c *Channel[T]) Components() int {
	return 1
}

func (c *Channel[T]) Geometry() image.Geometry {
	return c.img.Geometry()
}

func (c *Channel[T]) LargestRegion() image.Region {
	return c.img.LargestRegion()
}

func (c *Channel[T]) BufferedRegion() image.Region {
	return c.img.BufferedRegion()
}

func (c *Channel[T]) RequestedRegion() image.Region {
	return c.img.RequestedRegion()
}

func (c *Channel[T]) Offset(idx []int) int {
	return c.img.Offset(idx)
}

func (c *Channel[T]) Stride(axis int) int {
	return c.img.Stride(axis)
}

var _ pipeline.DataObject = (*Channel[float64])(nil)
