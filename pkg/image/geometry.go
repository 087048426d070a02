package image

// Geometry places an index grid in physical space.
type Geometry struct {
	Origin  []float64
	Spacing []float64
	// Direction is a row-major dimension x dimension matrix whose columns are the axis directions.
	Direction []float64
}

// NewGeometry returns the identity geometry: zero origin, unit spacing and identity directions.
func NewGeometry(dimension int) Geometry {
	geo := Geometry{
		Origin:    make([]float64, dimension),
		Spacing:   make([]float64, dimension),
		Direction: make([]float64, dimension*dimension),
	}

	for axis := 0; axis < dimension; axis++ {
		geo.Spacing[axis] = 1
		geo.Direction[axis*dimension+axis] = 1
	}

	return geo
}

// Dimension returns the number of axes.
func (g Geometry) Dimension() int {
	return len(g.Spacing)
}

// Clone returns a deep copy.
func (g Geometry) Clone() Geometry {
	return Geometry{
		Origin:    append([]float64(nil), g.Origin...),
		Spacing:   append([]float64(nil), g.Spacing...),
		Direction: append([]float64(nil), g.Direction...),
	}
}

// PixelVolume returns the product of the spacings.
func (g Geometry) PixelVolume() float64 {
	vol := 1.0
	for _, s := range g.Spacing {
		vol *= s
	}

	if vol < 0 {
		return -vol
	}

	return vol
}

// PhysicalPoint writes the physical position of a continuous index into dst and returns it.
func (g Geometry) PhysicalPoint(dst []float64, idx []float64) []float64 {
	dim := g.Dimension()
	if cap(dst) < dim {
		dst = make([]float64, dim)
	}

	dst = dst[:dim]

	for row := 0; row < dim; row++ {
		v := g.Origin[row]
		for col := 0; col < dim; col++ {
			v += g.Direction[row*dim+col] * idx[col] * g.Spacing[col]
		}

		dst[row] = v
	}

	return dst
}

// Information describes a data object before its pixels exist.
type Information struct {
	Geometry

	LargestRegion Region
	Components    int
}

// NewInformation creates the information of a region with identity geometry.
func NewInformation(largest Region, components int) Information {
	return Information{
		Geometry:      NewGeometry(largest.Dimension()),
		LargestRegion: largest.Clone(),
		Components:    components,
	}
}

// Clone returns a deep copy.
func (i Information) Clone() Information {
	return Information{
		Geometry:      i.Geometry.Clone(),
		LargestRegion: i.LargestRegion.Clone(),
		Components:    i.Components,
	}
}
