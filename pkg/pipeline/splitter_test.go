package pipeline_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
)

func TestSplitRegion(t *testing.T) {
	t.Parallel()

	region := image.NewRegion([]int{0, 3}, []int{10, 7})

	tcs := map[string]struct {
		axis     int
		pieces   int
		expected []int
	}{
		"balanced":         {axis: 1, pieces: 3, expected: []int{3, 2, 2}},
		"single":           {axis: 1, pieces: 1, expected: []int{7}},
		"more than size":   {axis: 1, pieces: 20, expected: []int{1, 1, 1, 1, 1, 1, 1}},
		"zero pieces":      {axis: 0, pieces: 0, expected: []int{10}},
		"along first axis": {axis: 0, pieces: 4, expected: []int{3, 3, 2, 2}},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := pipeline.SplitRegion(region, tc.axis, tc.pieces)
			require.Len(t, got, len(tc.expected))

			next := region.Index[tc.axis]
			union := image.Region{}

			for i, sub := range got {
				assert.Equal(t, tc.expected[i], sub.Size[tc.axis])
				assert.Equal(t, next, sub.Index[tc.axis])
				next += sub.Size[tc.axis]
				union = union.Union(sub)
			}

			assert.True(t, union.Equal(region))
		})
	}
}

func TestSplitterGet(t *testing.T) {
	t.Parallel()

	s := pipeline.NewSplitter(image.RegionFromSize(4, 4), 1, 2)
	assert.Equal(t, 2, s.Total())

	_, ok := s.Get()
	assert.True(t, ok)
	_, ok = s.Get()
	assert.True(t, ok)
	_, ok = s.Get()
	assert.False(t, ok)
}

func TestRequestSplitDisjoint(t *testing.T) {
	t.Parallel()

	region := image.RegionFromSize(64, 64, 4)
	img := image.NewScalar[float64](64, 64, 4)
	req := pipeline.NewRequest(img.Information(), region, 4)

	counts := make([]int32, region.NumberOfPixels())

	var (
		mu   sync.Mutex
		subs []image.Region
	)

	err := req.Split(context.Background(), region, 0, func(_ context.Context, sub image.Region) error {
		mu.Lock()
		subs = append(subs, sub)
		mu.Unlock()

		image.ForEachIndex(sub, func(idx []int) {
			atomic.AddInt32(&counts[img.Offset(idx)], 1)
		})

		return nil
	})
	require.NoError(t, err)

	assert.Greater(t, len(subs), 1)

	for _, sub := range subs {
		assert.Equal(t, 64, sub.Size[0])
	}

	for _, c := range counts {
		require.Equal(t, int32(1), c)
	}
}

func TestRequestSplitError(t *testing.T) {
	t.Parallel()

	region := image.RegionFromSize(64, 256)
	req := pipeline.NewRequest(image.NewInformation(region, 1), region, 4)

	errBoom := errors.New("boom")

	err := req.Split(context.Background(), region, 0, func(_ context.Context, sub image.Region) error {
		if sub.Index[1] == 0 {
			return errBoom
		}

		return nil
	})
	require.ErrorIs(t, err, errBoom)
}

func TestRequestForEach(t *testing.T) {
	t.Parallel()

	region := image.RegionFromSize(4)
	req := pipeline.NewRequest(image.NewInformation(region, 1), region, 3)
	assert.Equal(t, 3, req.Workers())

	seen := make([]int32, 100)

	err := req.ForEach(context.Background(), len(seen), func(_ context.Context, idx int) error {
		atomic.AddInt32(&seen[idx], 1)

		return nil
	})
	require.NoError(t, err)

	for _, s := range seen {
		assert.Equal(t, int32(1), s)
	}

	require.NoError(t, req.ForEach(context.Background(), 0, nil))
}

func TestInput(t *testing.T) {
	t.Parallel()

	img := image.NewScalar[uint8](2, 2)
	req := pipeline.NewRequest(img.Information(), img.LargestRegion(), 1, img)

	got, err := pipeline.Input[*image.Image[uint8]](req, 0)
	require.NoError(t, err)
	assert.Same(t, img, got)

	_, err = pipeline.Input[*image.Image[float64]](req, 0)
	require.ErrorIs(t, err, pipeline.ErrTypeMismatch)

	_, err = pipeline.Input[*image.Image[uint8]](req, 1)
	require.ErrorIs(t, err, pipeline.ErrInputMustBeSet)
}

func TestRequestPartition(t *testing.T) {
	t.Parallel()

	region := image.RegionFromSize(128, 128)
	req := pipeline.NewRequest(image.NewInformation(region, 1), region, 4)

	parts := req.Partition(region, 0)
	require.Len(t, parts, 4)

	next := 0
	for _, part := range parts {
		assert.Equal(t, 128, part.Size[0])
		assert.Equal(t, next, part.Index[1])
		next += part.Size[1]
	}

	assert.Equal(t, 128, next)

	line := image.RegionFromSize(1000)
	assert.Len(t, req.Partition(line, 0), 1)
}
