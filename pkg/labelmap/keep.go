package labelmap

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// KeepNObjects keeps the objects with the largest values of an attribute. Ties are broken by
// ascending label.
type KeepNObjects struct {
	pipeline.Filter
	numberOfObjects int
	attribute       Attribute
	reverseOrdering bool
}

// NewKeepNObjects keeps the largest object by number of pixels.
func NewKeepNObjects(name string) *KeepNObjects {
	return &KeepNObjects{
		Filter:          pipeline.NewFilter(name),
		numberOfObjects: 1,
		attribute:       AttributeNumberOfPixels,
	}
}

// SetNumberOfObjects sets how many objects are kept. Asking for more than available keeps them all.
func (k *KeepNObjects) SetNumberOfObjects(n int) {
	if k.numberOfObjects != n {
		k.numberOfObjects = n
		k.Modified()
	}
}

func (k *KeepNObjects) NumberOfObjects() int {
	return k.numberOfObjects
}

func (k *KeepNObjects) SetAttribute(attr Attribute) {
	if k.attribute != attr {
		k.attribute = attr
		k.Modified()
	}
}

// SetAttributeName selects the attribute by name.
func (k *KeepNObjects) SetAttributeName(name string) error {
	attr, err := AttributeFromName(name)
	if err != nil {
		return err
	}

	k.SetAttribute(attr)

	return nil
}

func (k *KeepNObjects) Attribute() Attribute {
	return k.attribute
}

// SetReverseOrdering keeps the objects with the smallest values instead.
func (k *KeepNObjects) SetReverseOrdering(reverse bool) {
	if k.reverseOrdering != reverse {
		k.reverseOrdering = reverse
		k.Modified()
	}
}

func (k *KeepNObjects) ReverseOrdering() bool {
	return k.reverseOrdering
}

func (k *KeepNObjects) Execute(_ context.Context, req *pipeline.Request) (pipeline.DataObject, error) {
	if k.numberOfObjects < 0 {
		return nil, errors.Wrapf(pipeline.ErrInvalidParameter, "cannot keep %d objects", k.numberOfObjects)
	}

	if !k.attribute.Valid() {
		return nil, errors.Wrapf(pipeline.ErrInvalidParameter, "unknown attribute %d", k.attribute)
	}

	in, err := inputMap(req, k.Name())
	if err != nil {
		return nil, err
	}

	objects := in.Objects()
	values := make(map[Label]float64, len(objects))

	for _, obj := range objects {
		v, ok := obj.Attribute(k.attribute)
		if !ok {
			return nil, errors.Wrapf(pipeline.ErrEmptyInput, "%s is not computed for label %d", k.attribute, obj.label)
		}

		values[obj.label] = v
	}

	sort.SliceStable(objects, func(i, j int) bool {
		vi, vj := values[objects[i].label], values[objects[j].label]
		if vi == vj {
			return objects[i].label < objects[j].label
		}

		if k.reverseOrdering {
			return vi < vj
		}

		return vi > vj
	})

	kept := objects
	if k.numberOfObjects < len(objects) {
		kept = objects[:k.numberOfObjects]
	}

	out := NewMap(in.info)
	for _, obj := range kept {
		err = out.Add(obj)
		if err != nil {
			return nil, err
		}
	}

	req.Logger.WithFields(logrus.Fields{
		"attribute": k.attribute.String(),
		"kept":      out.Len(),
		"removed":   in.Len() - out.Len(),
	}).Debug("objects selected")

	return out, nil
}
