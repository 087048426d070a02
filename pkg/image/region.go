package image

import (
	"fmt"
	"strings"
)

// Region is an axis-aligned range of pixel indices.
type Region struct {
	Index []int
	Size  []int
}

// NewRegion creates a region starting at index with the given size. Both slices are copied.
func NewRegion(index, size []int) Region {
	return Region{
		Index: append([]int(nil), index...),
		Size:  append([]int(nil), size...),
	}
}

// RegionFromSize creates a region of the given size starting at the origin.
func RegionFromSize(size ...int) Region {
	return Region{
		Index: make([]int, len(size)),
		Size:  append([]int(nil), size...),
	}
}

// Dimension returns the number of axes of the region.
func (r Region) Dimension() int {
	return len(r.Size)
}

// NumberOfPixels returns the number of pixels covered by the region.
func (r Region) NumberOfPixels() int {
	if len(r.Size) == 0 {
		return 0
	}

	total := 1
	for _, s := range r.Size {
		if s <= 0 {
			return 0
		}

		total *= s
	}

	return total
}

// Empty reports whether the region covers no pixel.
func (r Region) Empty() bool {
	return r.NumberOfPixels() == 0
}

// Upper returns the last index covered along axis.
func (r Region) Upper(axis int) int {
	return r.Index[axis] + r.Size[axis] - 1
}

// IsInside reports whether idx lies within the region.
func (r Region) IsInside(idx []int) bool {
	if len(idx) != len(r.Size) {
		return false
	}

	for axis, v := range idx {
		if v < r.Index[axis] || v >= r.Index[axis]+r.Size[axis] {
			return false
		}
	}

	return true
}

// Contains reports whether other lies entirely within r. An empty region is contained in any region
// of the same dimension.
func (r Region) Contains(other Region) bool {
	if other.Dimension() != r.Dimension() {
		return false
	}

	if other.Empty() {
		return true
	}

	for axis := range r.Size {
		if other.Index[axis] < r.Index[axis] || other.Upper(axis) > r.Upper(axis) {
			return false
		}
	}

	return true
}

// Crop returns the intersection of r and other. The boolean is false when they do not overlap.
func (r Region) Crop(other Region) (Region, bool) {
	if other.Dimension() != r.Dimension() {
		return Region{}, false
	}

	out := Region{Index: make([]int, r.Dimension()), Size: make([]int, r.Dimension())}

	for axis := range r.Size {
		lo := max(r.Index[axis], other.Index[axis])
		hi := min(r.Upper(axis), other.Upper(axis))

		if hi < lo {
			return Region{}, false
		}

		out.Index[axis] = lo
		out.Size[axis] = hi - lo + 1
	}

	return out, true
}

// Union returns the smallest region containing both r and other. Empty regions are ignored.
func (r Region) Union(other Region) Region {
	if r.Empty() {
		return other.Clone()
	}

	if other.Empty() {
		return r.Clone()
	}

	out := Region{Index: make([]int, r.Dimension()), Size: make([]int, r.Dimension())}

	for axis := range r.Size {
		lo := min(r.Index[axis], other.Index[axis])
		hi := max(r.Upper(axis), other.Upper(axis))
		out.Index[axis] = lo
		out.Size[axis] = hi - lo + 1
	}

	return out
}

// Equal reports whether both regions cover the same indices.
func (r Region) Equal(other Region) bool {
	if r.Dimension() != other.Dimension() {
		return false
	}

	for axis := range r.Size {
		if r.Index[axis] != other.Index[axis] || r.Size[axis] != other.Size[axis] {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of the region.
func (r Region) Clone() Region {
	return NewRegion(r.Index, r.Size)
}

// WithAxis returns a copy of r whose extent along axis is replaced.
func (r Region) WithAxis(axis, index, size int) Region {
	out := r.Clone()
	out.Index[axis] = index
	out.Size[axis] = size

	return out
}

func (r Region) String() string {
	parts := make([]string, len(r.Size))
	for axis := range r.Size {
		parts[axis] = fmt.Sprintf("%d+%d", r.Index[axis], r.Size[axis])
	}

	return "[" + strings.Join(parts, " ") + "]"
}
