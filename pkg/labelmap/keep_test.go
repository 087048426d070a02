package labelmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/labelmap"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

// bars draws one horizontal bar per length, one every other row.
func bars(lengths ...int) *image.Image[uint8] {
	img := image.NewScalar[uint8](16, 2*len(lengths))
	for i, length := range lengths {
		fillBox(img, []int{0, 2 * i}, []int{length, 1})
	}

	return img
}

func keep(t *testing.T, m *labelmap.Map, opts func(k *labelmap.KeepNObjects)) (*labelmap.Map, error) {
	t.Helper()

	k := labelmap.NewKeepNObjects("keep")
	opts(k)

	out, err := run(t, k, 2, m)
	if err != nil {
		return nil, err
	}

	return out.(*labelmap.Map), nil
}

func TestKeepNObjects(t *testing.T) {
	t.Parallel()

	m := shapes(t, label(t, bars(3, 5, 1, 4, 2), false))

	tcs := map[string]struct {
		n        int
		reverse  bool
		expected []labelmap.Label
	}{
		"largest":     {n: 1, expected: []labelmap.Label{2}},
		"two largest": {n: 2, expected: []labelmap.Label{2, 4}},
		"smallest":    {n: 2, reverse: true, expected: []labelmap.Label{3, 5}},
		"none":        {n: 0, expected: []labelmap.Label{}},
		"all":         {n: 5, expected: []labelmap.Label{1, 2, 3, 4, 5}},
		"more":        {n: 12, expected: []labelmap.Label{1, 2, 3, 4, 5}},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out, err := keep(t, m, func(k *labelmap.KeepNObjects) {
				k.SetNumberOfObjects(tc.n)
				k.SetReverseOrdering(tc.reverse)
			})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out.Labels())
		})
	}
}

func TestKeepNObjectsSharesObjects(t *testing.T) {
	t.Parallel()

	m := shapes(t, label(t, bars(3, 5), false))

	out, err := keep(t, m, func(k *labelmap.KeepNObjects) {})
	require.NoError(t, err)

	kept, ok := out.Object(2)
	require.True(t, ok)

	orig, ok := m.Object(2)
	require.True(t, ok)
	assert.Same(t, orig, kept)
	assert.Equal(t, 2, m.Len())
}

func TestKeepNObjectsTies(t *testing.T) {
	t.Parallel()

	m := shapes(t, label(t, bars(3, 3, 3), false))

	out, err := keep(t, m, func(k *labelmap.KeepNObjects) { k.SetNumberOfObjects(2) })
	require.NoError(t, err)
	assert.Equal(t, []labelmap.Label{1, 2}, out.Labels())

	out, err = keep(t, m, func(k *labelmap.KeepNObjects) {
		k.SetNumberOfObjects(2)
		k.SetReverseOrdering(true)
	})
	require.NoError(t, err)
	assert.Equal(t, []labelmap.Label{1, 2}, out.Labels())
}

func TestKeepNObjectsAttributes(t *testing.T) {
	t.Parallel()

	// A 4x1 bar, then a 2x2 square, then a single pixel.
	img := image.NewScalar[uint8](8, 8)
	fillBox(img, []int{1, 0}, []int{4, 1})
	fillBox(img, []int{1, 3}, []int{2, 2})
	setPixels(img, []int{6, 6})

	raw := label(t, img, false)
	m := shapes(t, raw)

	out, err := keep(t, m, func(k *labelmap.KeepNObjects) {
		require.NoError(t, k.SetAttributeName("elongation"))
	})
	require.NoError(t, err)
	assert.Equal(t, []labelmap.Label{1}, out.Labels())

	out, err = keep(t, m, func(k *labelmap.KeepNObjects) {
		k.SetAttribute(labelmap.AttributeElongation)
		k.SetReverseOrdering(true)
		k.SetNumberOfObjects(2)
	})
	require.NoError(t, err)
	assert.Equal(t, []labelmap.Label{2, 3}, out.Labels())

	out, err = keep(t, raw, func(k *labelmap.KeepNObjects) {
		k.SetAttribute(labelmap.AttributeLabel)
	})
	require.NoError(t, err)
	assert.Equal(t, []labelmap.Label{3}, out.Labels())

	_, err = keep(t, raw, func(*labelmap.KeepNObjects) {})
	require.ErrorIs(t, err, pipeline.ErrEmptyInput)
}

func TestKeepNObjectsErrors(t *testing.T) {
	t.Parallel()

	m := shapes(t, label(t, bars(1, 2), false))

	k := labelmap.NewKeepNObjects("keep")
	require.ErrorIs(t, k.SetAttributeName("roundness"), pipeline.ErrInvalidParameter)
	assert.Equal(t, labelmap.AttributeNumberOfPixels, k.Attribute())

	_, err := keep(t, m, func(k *labelmap.KeepNObjects) { k.SetNumberOfObjects(-1) })
	require.ErrorIs(t, err, pipeline.ErrInvalidParameter)

	_, err = keep(t, m, func(k *labelmap.KeepNObjects) { k.SetAttribute(labelmap.Attribute(42)) })
	require.ErrorIs(t, err, pipeline.ErrInvalidParameter)
}

func TestAttributeFromName(t *testing.T) {
	t.Parallel()

	for _, attr := range labelmap.Attributes() {
		got, err := labelmap.AttributeFromName(attr.String())
		require.NoError(t, err)
		assert.Equal(t, attr, got)
	}

	got, err := labelmap.AttributeFromName("numberofpixelsonborder")
	require.NoError(t, err)
	assert.Equal(t, labelmap.AttributeNumberOfPixelsOnBorder, got)

	_, err = labelmap.AttributeFromName("")
	require.ErrorIs(t, err, pipeline.ErrInvalidParameter)

	assert.Equal(t, "unknown", labelmap.Attribute(-1).String())
}

func TestKeepTwoLargestByPhysicalSize(t *testing.T) {
	t.Parallel()

	img := bars(3, 9, 1, 7, 5)
	geo := img.Geometry()
	geo.Spacing = []float64{0.5, 3}
	img.SetGeometry(geo)

	m := shapes(t, label(t, img, true))
	require.Equal(t, 5, m.Len())

	out, err := keep(t, m, func(k *labelmap.KeepNObjects) {
		k.SetAttribute(labelmap.AttributePhysicalSize)
		k.SetNumberOfObjects(2)
	})
	require.NoError(t, err)
	assert.Equal(t, []labelmap.Label{2, 4}, out.Labels())

	kept := 0
	for _, obj := range out.Objects() {
		kept += obj.NumberOfPixels()
	}

	assert.Equal(t, 16, kept)

	obj, ok := out.Object(2)
	require.True(t, ok)

	size, ok := obj.Attribute(labelmap.AttributePhysicalSize)
	require.True(t, ok)
	assert.InDelta(t, 9*1.5, size, 1e-12)
}
