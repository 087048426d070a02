// Package model provides the descriptors shared by the pipeline package and its options.
// It defines how a node is described to the outside world and the hooks a graph option
// can attach to node registration, region propagation and execution.
package model
