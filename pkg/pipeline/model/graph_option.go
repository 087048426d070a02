package model

import "time"

// GraphOption defines the interface for graph level options.
type GraphOption interface {
	// New initialises the graph option.
	New() error

	graphNodeOption
	graphUpdateOption

	// Finish runs when the graph is closed.
	Finish() error
}

// graphNodeOption defines the hooks run while the graph is built.
type graphNodeOption interface {
	// PrepareNode runs when a node is added to the graph.
	PrepareNode(inputs []*NodeInfo, node *NodeInfo) error
}

// graphUpdateOption defines the hooks run during an update.
type graphUpdateOption interface {
	// OnRegionRequested runs everytime a node requests a region of one of its inputs.
	OnRegionRequested(input, node *NodeInfo, pixels int) error
	// OnNodeExecuted runs after a node produced a new output.
	OnNodeExecuted(node *NodeInfo, computationDuration time.Duration) error
	// OnNodeSkipped runs when a node reused its cached output.
	OnNodeSkipped(node *NodeInfo) error
	// AfterUpdate runs after an update of node completed successfully.
	AfterUpdate(node *NodeInfo, totalDuration time.Duration) error
}
