package pipeline

import (
	"sync"

	"github.com/askiada/go-image-pipeline/pkg/image"
)

// Splitter hands out disjoint sub-regions to the workers of a node.
type Splitter struct {
	mu      sync.Mutex
	currIdx int
	regions []image.Region
}

// NewSplitter partitions region into at most pieces sub-regions along axis.
func NewSplitter(region image.Region, axis, pieces int) *Splitter {
	return &Splitter{regions: SplitRegion(region, axis, pieces)}
}

// Get returns the next sub-region, or false once all of them were handed out.
func (s *Splitter) Get() (image.Region, bool) {
	s.mu.Lock()
	defer func() {
		s.currIdx++
		s.mu.Unlock()
	}()

	if s.currIdx >= len(s.regions) {
		return image.Region{}, false
	}

	return s.regions[s.currIdx], true
}

// Total returns the number of sub-regions.
func (s *Splitter) Total() int {
	return len(s.regions)
}

// SplitRegion cuts region along axis into at most pieces contiguous, disjoint sub-regions of
// near equal size. Their union is region.
func SplitRegion(region image.Region, axis, pieces int) []image.Region {
	if region.Empty() || axis < 0 || axis >= region.Dimension() {
		return []image.Region{region.Clone()}
	}

	size := region.Size[axis]
	pieces = min(max(pieces, 1), size)

	res := make([]image.Region, 0, pieces)
	base, extra := size/pieces, size%pieces
	start := region.Index[axis]

	for i := 0; i < pieces; i++ {
		length := base
		if i < extra {
			length++
		}

		res = append(res, region.WithAxis(axis, start, length))
		start += length
	}

	return res
}

// splitAxis returns the outermost axis, other than lineAxis, that can be cut, or -1.
func splitAxis(region image.Region, lineAxis int) int {
	for axis := region.Dimension() - 1; axis >= 0; axis-- {
		if axis != lineAxis && region.Size[axis] > 1 {
			return axis
		}
	}

	return -1
}
