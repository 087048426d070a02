package labelmap

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// Map is a set of objects over the grid of the image they were extracted from. It always covers
// the largest region of that image.
type Map struct {
	info    image.Information
	objects map[Label]*Object
}

// NewMap creates an empty map. The components of info are ignored.
func NewMap(info image.Information) *Map {
	info = info.Clone()
	info.Components = 1

	return &Map{
		info:    info,
		objects: make(map[Label]*Object),
	}
}

func (m *Map) Information() image.Information {
	return m.info.Clone()
}

func (m *Map) BufferedRegion() image.Region {
	return m.info.LargestRegion.Clone()
}

// Add inserts an object. Labels are unique and never 0.
func (m *Map) Add(obj *Object) error {
	if obj.label == 0 {
		return errors.Wrap(pipeline.ErrInvalidParameter, "label 0 is reserved for the background")
	}

	if _, ok := m.objects[obj.label]; ok {
		return errors.Wrapf(pipeline.ErrInvalidParameter, "label %d already exists", obj.label)
	}

	m.objects[obj.label] = obj

	return nil
}

func (m *Map) Object(label Label) (*Object, bool) {
	obj, ok := m.objects[label]

	return obj, ok
}

func (m *Map) Remove(label Label) {
	delete(m.objects, label)
}

func (m *Map) Len() int {
	return len(m.objects)
}

// Labels returns the labels in ascending order.
func (m *Map) Labels() []Label {
	labels := make([]Label, 0, len(m.objects))
	for label := range m.objects {
		labels = append(labels, label)
	}

	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	return labels
}

// Objects returns the objects sorted by label.
func (m *Map) Objects() []*Object {
	labels := m.Labels()

	objects := make([]*Object, len(labels))
	for i, label := range labels {
		objects[i] = m.objects[label]
	}

	return objects
}

// Copy returns a map whose objects share their lines with m but own their attributes.
func (m *Map) Copy() *Map {
	out := NewMap(m.info)
	for label, obj := range m.objects {
		out.objects[label] = obj.copy()
	}

	return out
}

var _ pipeline.DataObject = (*Map)(nil)
