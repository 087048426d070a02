package measure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	msr := NewDefaultMeasure()
	mt := msr.AddMetric("gradient#1", 4)

	mt.AddDuration(2 * time.Millisecond)
	mt.AddDuration(4 * time.Millisecond)
	mt.AddSkip()
	mt.AddRequest("source#0", 100)
	mt.AddRequest("source#0", 50)

	assert.Equal(t, 3*time.Millisecond, mt.AVGDuration())
	assert.Equal(t, int64(2), mt.Executions())
	assert.Equal(t, int64(1), mt.Skips())

	req := mt.AllRequests()["source#0"]
	require.NotNil(t, req)
	assert.Equal(t, int64(150), req.Pixels)
	assert.Equal(t, int64(75), req.AVGPixels())

	assert.Same(t, mt, msr.GetMetric("gradient#1"))
	assert.Len(t, msr.AllMetrics(), 1)
}

func TestAVGDurationEmpty(t *testing.T) {
	t.Parallel()

	mt := NewDefaultMeasure().AddMetric("empty", 1)
	assert.Zero(t, mt.AVGDuration())
}

func TestRound(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in       time.Duration
		expected time.Duration
	}{
		"nanoseconds":  {in: 999, expected: 999},
		"microseconds": {in: 1500 * time.Nanosecond, expected: 2 * time.Microsecond},
		"milliseconds": {in: 1234567 * time.Nanosecond, expected: time.Millisecond},
		"seconds":      {in: 1600 * time.Millisecond, expected: 2 * time.Second},
		"minutes":      {in: 61*time.Minute + 29*time.Second, expected: time.Hour},
	}

	for name, tc := range tcs {
		tc := tc

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.expected, round(tc.in))
		})
	}
}

func TestGraphMeasure(t *testing.T) {
	t.Parallel()

	msr := NewDefaultMeasure()
	opt := GraphMeasure(msr)

	src := &model.NodeInfo{Type: model.SourceNodeType, Name: "source", ID: 0}
	node := &model.NodeInfo{Type: model.FilterNodeType, Name: "smooth", ID: 1, Workers: 2}

	require.NoError(t, opt.New())
	require.NoError(t, opt.PrepareNode(nil, src))
	require.NoError(t, opt.PrepareNode([]*model.NodeInfo{src}, node))
	require.NoError(t, opt.OnRegionRequested(src, node, 64))
	require.NoError(t, opt.OnNodeExecuted(node, time.Millisecond))
	require.NoError(t, opt.OnNodeSkipped(node))
	require.NoError(t, opt.AfterUpdate(node, 2*time.Millisecond))
	require.NoError(t, opt.Finish())

	mt := msr.GetMetric("smooth#1")
	require.NotNil(t, mt)
	assert.Equal(t, int64(1), mt.Executions())
	assert.Equal(t, int64(1), mt.Skips())
	assert.Equal(t, 2*time.Millisecond, mt.GetTotalDuration())
	assert.Equal(t, int64(64), mt.AllRequests()["source#0"].Pixels)

	err := opt.OnNodeSkipped(&model.NodeInfo{Name: "ghost", ID: 9})
	require.ErrorIs(t, err, errUnknownNode)
}
