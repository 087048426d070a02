package drawer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-image-pipeline/pkg/pipeline/measure"
	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

func TestDOTDrawer(t *testing.T) {
	t.Parallel()

	d := NewDOTDrawer("")
	require.NoError(t, d.AddNode("source#0"))
	require.NoError(t, d.AddNode("gradient#1"))
	require.NoError(t, d.AddLink("source#0", "gradient#1"))

	err := d.AddLink("source#0", "missing")
	require.Error(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, d.DrawTo(buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "strict digraph {"))
	assert.Contains(t, out, `"source#0" -> "gradient#1"`)
}

func TestAddMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	src := msr.AddMetric("source#0", 1)
	small := msr.AddMetric("small#1", 1)
	big := msr.AddMetric("big#2", 1)

	small.AddRequest("source#0", 10)
	small.AddDuration(time.Millisecond)
	big.AddRequest("source#0", 1000)
	big.AddSkip()
	src.SetTotalDuration(time.Second)

	d := NewDOTDrawer("")
	for _, name := range []string{"source#0", "small#1", "big#2"} {
		require.NoError(t, d.AddNode(name))
	}

	require.NoError(t, d.AddLink("source#0", "small#1"))
	require.NoError(t, d.AddLink("source#0", "big#2"))
	require.NoError(t, d.AddMeasure(msr))

	buf := &bytes.Buffer{}
	require.NoError(t, d.DrawTo(buf))

	out := buf.String()
	assert.Contains(t, out, `label="10 px"`)
	assert.Contains(t, out, `label="1000 px"`)

	blue, err := colors.RGB(0, 0, maxRGB)
	require.NoError(t, err)
	red, err := colors.RGB(maxRGB, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, out, `color="`+blue.ToHEX().String()+`"`)
	assert.Contains(t, out, `color="`+red.ToHEX().String()+`"`)
	assert.Contains(t, out, "runs: 1, skips: 0")
	assert.Contains(t, out, "runs: 0, skips: 1")
	assert.Contains(t, out, "end: 1s")
}

func TestGraphDrawer(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "graph.dot")

	msr := measure.NewDefaultMeasure()
	msrOpt := measure.GraphMeasure(msr)
	opt := GraphDrawer(NewDOTDrawer(fileName), msr)

	src := &model.NodeInfo{Type: model.SourceNodeType, Name: "source", ID: 0}
	node := &model.NodeInfo{Type: model.FilterNodeType, Name: "labeler", ID: 1}

	for _, o := range []model.GraphOption{msrOpt, opt} {
		require.NoError(t, o.New())
		require.NoError(t, o.PrepareNode(nil, src))
		require.NoError(t, o.PrepareNode([]*model.NodeInfo{src}, node))
		require.NoError(t, o.OnRegionRequested(src, node, 16))
		require.NoError(t, o.OnNodeExecuted(node, time.Millisecond))
		require.NoError(t, o.Finish())
	}

	content, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"source#0" -> "labeler#1"`)
	assert.Contains(t, string(content), `label="16 px"`)
}
