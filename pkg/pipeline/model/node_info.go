package model

import "strconv"

type NodeType string

const (
	SourceNodeType    NodeType = "source"
	FilterNodeType    NodeType = "filter"
	CompositeNodeType NodeType = "composite"
)

// NodeInfo describes a node registered in a graph.
type NodeInfo struct {
	Type    NodeType
	Name    string
	ID      int
	Workers int
}

// Label returns a name unique within a graph, used to identify the node in drawings and metrics.
func (n *NodeInfo) Label() string {
	return n.Name + "#" + strconv.Itoa(n.ID)
}
