package image

// ForEachLine calls fn with the first index of every line of region along axis, in scan order
// (the lowest remaining axis varies fastest). The start slice is reused between calls.
func ForEachLine(region Region, axis int, fn func(start []int)) {
	dim := region.Dimension()
	if region.Empty() || axis < 0 || axis >= dim {
		return
	}

	start := append([]int(nil), region.Index...)

	for {
		fn(start)

		advanced := false

		for a := 0; a < dim; a++ {
			if a == axis {
				continue
			}

			start[a]++
			if start[a] <= region.Upper(a) {
				advanced = true

				break
			}

			start[a] = region.Index[a]
		}

		if !advanced {
			return
		}
	}
}

// ForEachIndex calls fn with every index of region in scan order. The index slice is reused.
func ForEachIndex(region Region, fn func(idx []int)) {
	if region.Dimension() == 0 {
		return
	}

	idx := make([]int, region.Dimension())

	ForEachLine(region, 0, func(start []int) {
		copy(idx, start)

		for x := 0; x < region.Size[0]; x++ {
			idx[0] = region.Index[0] + x
			fn(idx)
		}
	})
}

// NumberOfLines returns how many lines of region run along axis.
func NumberOfLines(region Region, axis int) int {
	if region.Empty() {
		return 0
	}

	return region.NumberOfPixels() / region.Size[axis]
}
