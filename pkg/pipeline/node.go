package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

var clock uint64

// Tick advances the modification clock and returns its new value.
func Tick() uint64 {
	return atomic.AddUint64(&clock, 1)
}

// DataObject is what flows between nodes.
type DataObject interface {
	Information() image.Information
	BufferedRegion() image.Region
}

// Node is a stage of a Graph.
type Node interface {
	// Name identifies the node in logs, errors and metrics.
	Name() string
	// MTime returns the clock value of the last parameter change.
	MTime() uint64
	// OutputInformation computes the information of the output from the information of the inputs.
	OutputInformation(inputs []image.Information) (image.Information, error)
	// InputRequestedRegions returns, for every input, the region needed to produce out.
	InputRequestedRegions(out image.Region, inputs []image.Information) ([]image.Region, error)
	// Execute produces an output whose buffered region contains req.Region.
	Execute(ctx context.Context, req *Request) (DataObject, error)
}

type typedNode interface {
	NodeType() model.NodeType
}

func nodeType(node Node) model.NodeType {
	if tn, ok := node.(typedNode); ok {
		return tn.NodeType()
	}

	return model.FilterNodeType
}

// Filter is embedded by nodes to track parameter changes. Its defaults copy the
// information of the first input and request the largest region of every input.
type Filter struct {
	name  string
	mtime uint64
}

// NewFilter creates a filter already marked as modified.
func NewFilter(name string) Filter {
	return Filter{name: name, mtime: Tick()}
}

func (f *Filter) Name() string {
	return f.name
}

// SetName renames the node. It does not count as a parameter change.
func (f *Filter) SetName(name string) {
	f.name = name
}

// Modified records a parameter change.
func (f *Filter) Modified() {
	atomic.StoreUint64(&f.mtime, Tick())
}

func (f *Filter) MTime() uint64 {
	return atomic.LoadUint64(&f.mtime)
}

func (f *Filter) OutputInformation(inputs []image.Information) (image.Information, error) {
	if len(inputs) == 0 {
		return image.Information{}, errors.Wrapf(ErrInputMustBeSet, "%s has no input", f.name)
	}

	return inputs[0].Clone(), nil
}

func (f *Filter) InputRequestedRegions(_ image.Region, inputs []image.Information) ([]image.Region, error) {
	regions := make([]image.Region, len(inputs))
	for i, info := range inputs {
		regions[i] = info.LargestRegion.Clone()
	}

	return regions, nil
}
