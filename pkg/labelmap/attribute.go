package labelmap

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// Attribute names a scalar measurement of an object.
type Attribute int

const (
	AttributeLabel Attribute = iota
	AttributeNumberOfPixels
	AttributePhysicalSize
	AttributeNumberOfPixelsOnBorder
	AttributeElongation
	AttributeFlatness
	AttributeEquivalentSphericalRadius
)

var attributeNames = map[Attribute]string{
	AttributeLabel:                     "Label",
	AttributeNumberOfPixels:            "NumberOfPixels",
	AttributePhysicalSize:              "PhysicalSize",
	AttributeNumberOfPixelsOnBorder:    "NumberOfPixelsOnBorder",
	AttributeElongation:                "Elongation",
	AttributeFlatness:                  "Flatness",
	AttributeEquivalentSphericalRadius: "EquivalentSphericalRadius",
}

func (a Attribute) String() string {
	if name, ok := attributeNames[a]; ok {
		return name
	}

	return "unknown"
}

// Valid reports whether a is a known attribute.
func (a Attribute) Valid() bool {
	_, ok := attributeNames[a]

	return ok
}

// Attributes returns every known attribute.
func Attributes() []Attribute {
	return []Attribute{
		AttributeLabel,
		AttributeNumberOfPixels,
		AttributePhysicalSize,
		AttributeNumberOfPixelsOnBorder,
		AttributeElongation,
		AttributeFlatness,
		AttributeEquivalentSphericalRadius,
	}
}

// AttributeFromName looks an attribute up by name, ignoring case.
func AttributeFromName(name string) (Attribute, error) {
	for _, attr := range Attributes() {
		if strings.EqualFold(attributeNames[attr], name) {
			return attr, nil
		}
	}

	return 0, errors.Wrapf(pipeline.ErrInvalidParameter, "unknown attribute %q", name)
}
