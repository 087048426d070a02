// Package labelmap labels connected components of binary images as run-length encoded objects,
// computes their shape attributes and selects or renders them.
package labelmap

import (
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/go-image-pipeline/pkg/image"
)

// Label identifies an object. Label 0 is never assigned.
type Label uint32

// Line is a run of consecutive pixels along axis 0.
type Line struct {
	// Index is the first pixel of the run.
	Index []int
	// Length is the number of pixels of the run.
	Length int
}

// Last returns the index along axis 0 of the last pixel of the run.
func (l Line) Last() int {
	return l.Index[0] + l.Length - 1
}

// Shape holds the geometric moments of an object, in physical coordinates.
type Shape struct {
	BoundingBox      image.Region
	Centroid         []float64
	PrincipalMoments []float64
	// PrincipalAxes has one principal axis per row, in the order of PrincipalMoments.
	PrincipalAxes *mat.Dense
}

// Object is a labeled set of lines plus the attributes computed for it.
type Object struct {
	label      Label
	lines      []Line
	pixels     int
	attributes map[Attribute]float64
	shape      *Shape
}

// NewObject creates an empty object.
func NewObject(label Label) *Object {
	return &Object{
		label:      label,
		attributes: make(map[Attribute]float64),
	}
}

func (o *Object) Label() Label {
	return o.label
}

// AddLine appends a run starting at index. The index is copied.
func (o *Object) AddLine(index []int, length int) {
	o.lines = append(o.lines, Line{Index: append([]int(nil), index...), Length: length})
	o.pixels += length
}

// Lines returns the runs of the object in scan order. They must not be modified.
func (o *Object) Lines() []Line {
	return o.lines
}

func (o *Object) NumberOfPixels() int {
	return o.pixels
}

// Attribute returns the value of a computed attribute. The label attribute is always known.
func (o *Object) Attribute(attr Attribute) (float64, bool) {
	if attr == AttributeLabel {
		return float64(o.label), true
	}

	v, ok := o.attributes[attr]

	return v, ok
}

func (o *Object) SetAttribute(attr Attribute, v float64) {
	o.attributes[attr] = v
}

// Shape returns the moments computed by the shape filter, nil before.
func (o *Object) Shape() *Shape {
	return o.shape
}

func (o *Object) SetShape(shape *Shape) {
	o.shape = shape
}

// copy shares the lines, which are never modified once labeling is done, but not the attributes.
func (o *Object) copy() *Object {
	out := &Object{
		label:      o.label,
		lines:      o.lines,
		pixels:     o.pixels,
		attributes: make(map[Attribute]float64, len(o.attributes)),
		shape:      o.shape,
	}

	for attr, v := range o.attributes {
		out.attributes[attr] = v
	}

	return out
}
