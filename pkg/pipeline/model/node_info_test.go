package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeInfoLabel(t *testing.T) {
	t.Parallel()

	info := &NodeInfo{Type: FilterNodeType, Name: "labeler", ID: 3}
	assert.Equal(t, "labeler#3", info.Label())
}
