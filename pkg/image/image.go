// Package image provides the N-dimensional regular-grid container shared by every pipeline stage.
//
// An Image holds three regions: the largest possible region (the full extent of the data set), the
// buffered region (what is actually in memory) and the requested region (what the consumer asked for).
// Pixels are stored contiguously, axis 0 varying fastest, with the components of a pixel interleaved.
package image

import (
	"github.com/pkg/errors"
)

// ErrRegionOutOfBounds is returned when a region does not fit in the largest possible region.
var ErrRegionOutOfBounds = errors.New("region out of bounds")

// Pixel is the set of numeric types an image can store.
type Pixel interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64 | ~int | ~float32 | ~float64
}

// Image is an N-dimensional image with components of type T.
type Image[T Pixel] struct {
	info      Information
	buffered  Region
	requested Region
	strides   []int
	data      []T
}

// New allocates an image covering the largest region of info. Components defaults to 1.
func New[T Pixel](info Information) *Image[T] {
	info = info.Clone()
	if info.Components <= 0 {
		info.Components = 1
	}

	img := &Image[T]{info: info}
	img.allocate(info.LargestRegion)

	return img
}

// NewBuffered creates an image described by info whose buffer covers region only.
func NewBuffered[T Pixel](info Information, region Region) (*Image[T], error) {
	info = info.Clone()
	if info.Components <= 0 {
		info.Components = 1
	}

	if !info.LargestRegion.Contains(region) {
		return nil, errors.Wrapf(ErrRegionOutOfBounds, "cannot allocate %s in %s", region, info.LargestRegion)
	}

	img := &Image[T]{info: info}
	img.allocate(region)

	return img, nil
}

// NewScalar allocates a single component image of the given size with identity geometry.
func NewScalar[T Pixel](size ...int) *Image[T] {
	return New[T](NewInformation(RegionFromSize(size...), 1))
}

// Allocate replaces the buffer with a zeroed one covering region.
func (img *Image[T]) Allocate(region Region) error {
	if !img.info.LargestRegion.Contains(region) {
		return errors.Wrapf(ErrRegionOutOfBounds, "cannot allocate %s in %s", region, img.info.LargestRegion)
	}

	img.allocate(region)

	return nil
}

func (img *Image[T]) allocate(region Region) {
	img.buffered = region.Clone()
	img.requested = region.Clone()
	img.strides = make([]int, region.Dimension())

	stride := 1
	for axis, s := range region.Size {
		img.strides[axis] = stride
		stride *= s
	}

	img.data = make([]T, region.NumberOfPixels()*img.info.Components)
}

// Information returns the geometry, largest region and component count.
func (img *Image[T]) Information() Information {
	return img.info.Clone()
}

// CopyInformation replaces geometry and largest region with those of info. The components and the
// buffer are left as they are; call Allocate to match a new largest region.
func (img *Image[T]) CopyInformation(info Information) {
	img.info.Geometry = info.Geometry.Clone()
	img.info.LargestRegion = info.LargestRegion.Clone()
}

// Lines calls fn with the buffer offset of the first pixel of every line of region along axis,
// in scan order. Consecutive pixels of a line are Stride(axis) apart.
func (img *Image[T]) Lines(region Region, axis int, fn func(offset int)) {
	ForEachLine(region, axis, func(start []int) {
		fn(img.Offset(start))
	})
}

// Geometry returns the physical placement of the grid.
func (img *Image[T]) Geometry() Geometry {
	return img.info.Geometry.Clone()
}

// SetGeometry replaces the physical placement of the grid.
func (img *Image[T]) SetGeometry(geo Geometry) {
	img.info.Geometry = geo.Clone()
}

// Dimension returns the number of axes.
func (img *Image[T]) Dimension() int {
	return img.info.LargestRegion.Dimension()
}

// Components returns the number of components per pixel.
func (img *Image[T]) Components() int {
	return img.info.Components
}

// LargestRegion returns the full extent of the data set.
func (img *Image[T]) LargestRegion() Region {
	return img.info.LargestRegion.Clone()
}

// BufferedRegion returns the region held in memory.
func (img *Image[T]) BufferedRegion() Region {
	return img.buffered.Clone()
}

// RequestedRegion returns the region last requested by a consumer.
func (img *Image[T]) RequestedRegion() Region {
	return img.requested.Clone()
}

// SetRequestedRegion records the region requested by a consumer.
func (img *Image[T]) SetRequestedRegion(region Region) {
	img.requested = region.Clone()
}

// Stride returns the distance, in pixels, between two neighbours along axis.
func (img *Image[T]) Stride(axis int) int {
	return img.strides[axis]
}

// Offset returns the pixel offset of idx in the buffer. idx must lie in the buffered region.
func (img *Image[T]) Offset(idx []int) int {
	off := 0
	for axis, v := range idx {
		off += (v - img.buffered.Index[axis]) * img.strides[axis]
	}

	return off
}

// At returns the first component of the pixel at idx.
func (img *Image[T]) At(idx []int) T {
	return img.data[img.Offset(idx)*img.info.Components]
}

// Set writes the first component of the pixel at idx.
func (img *Image[T]) Set(idx []int, v T) {
	img.data[img.Offset(idx)*img.info.Components] = v
}

// Component returns component c of the pixel at idx.
func (img *Image[T]) Component(idx []int, c int) T {
	return img.data[img.Offset(idx)*img.info.Components+c]
}

// SetComponent writes component c of the pixel at idx.
func (img *Image[T]) SetComponent(idx []int, c int, v T) {
	img.data[img.Offset(idx)*img.info.Components+c] = v
}

// Value returns the first component of the pixel at offset as a float64.
func (img *Image[T]) Value(pixel int) float64 {
	return float64(img.data[pixel*img.info.Components])
}

// SetValue writes v, converted to T, in the first component of the pixel at offset.
func (img *Image[T]) SetValue(pixel int, v float64) {
	img.data[pixel*img.info.Components] = T(v)
}

// ComponentAt returns component c of the pixel at offset.
func (img *Image[T]) ComponentAt(pixel, c int) T {
	return img.data[pixel*img.info.Components+c]
}

// SetComponentAt writes component c of the pixel at offset.
func (img *Image[T]) SetComponentAt(pixel, c int, v T) {
	img.data[pixel*img.info.Components+c] = v
}

// Pixels returns the underlying buffer.
func (img *Image[T]) Pixels() []T {
	return img.data
}

// Fill sets every component of every buffered pixel to v.
func (img *Image[T]) Fill(v T) {
	for i := range img.data {
		img.data[i] = v
	}
}

// Clone returns a deep copy of the image.
func (img *Image[T]) Clone() *Image[T] {
	out := &Image[T]{
		info:      img.info.Clone(),
		buffered:  img.buffered.Clone(),
		requested: img.requested.Clone(),
		strides:   append([]int(nil), img.strides...),
		data:      append([]T(nil), img.data...),
	}

	return out
}
