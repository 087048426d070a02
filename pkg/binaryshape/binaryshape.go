// Package binaryshape keeps the N connected objects of a binary image that rank first by a shape
// attribute, as a single composite node.
package binaryshape

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/labelmap"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

// Option configures a Filter.
type Option func(o *options)

type options struct {
	graphOptions []pipeline.Option
}

// WithGraphOptions configures the inner graph, e.g. its workers, logger or hooks.
func WithGraphOptions(opts ...pipeline.Option) Option {
	return func(o *options) {
		o.graphOptions = append(o.graphOptions, opts...)
	}
}

// Filter chains a labeler, a shape filter, a keep N objects filter and a binary renderer in an
// inner graph. Changing a parameter only reruns the inner nodes that depend on it.
type Filter[T image.Pixel] struct {
	mu   sync.Mutex
	name string

	source   *pipeline.Source
	labeler  *labelmap.Labeler[T]
	shape    *labelmap.ShapeFilter
	keep     *labelmap.KeepNObjects
	renderer *labelmap.BinaryRenderer[T]

	graph     *pipeline.Graph
	outputID  pipeline.NodeID
	input     *image.Image[T]
	inputTime uint64
}

// New builds the inner graph. By default the largest object, by number of pixels, is kept.
func New[T image.Pixel](name string, opts ...Option) (*Filter[T], error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	g, err := pipeline.New(o.graphOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create inner graph")
	}

	f := &Filter[T]{
		name:     name,
		source:   pipeline.NewSource("input", nil),
		labeler:  labelmap.NewLabeler[T]("labeler"),
		shape:    labelmap.NewShapeFilter("shape"),
		keep:     labelmap.NewKeepNObjects("keep"),
		renderer: labelmap.NewBinaryRenderer[T]("render"),
		graph:    g,
	}

	id, err := g.Add(f.source)
	if err != nil {
		return nil, err
	}

	for _, node := range []pipeline.Node{f.labeler, f.shape, f.keep, f.renderer} {
		id, err = g.Add(node, id)
		if err != nil {
			return nil, err
		}
	}

	f.outputID = id

	return f, nil
}

func (f *Filter[T]) Name() string {
	return f.name
}

func (f *Filter[T]) NodeType() model.NodeType {
	return model.CompositeNodeType
}

// MTime is the latest parameter change of the inner nodes. The inner source is excluded since
// it only changes when the composite executes.
func (f *Filter[T]) MTime() uint64 {
	var mtime uint64

	for _, node := range []pipeline.Node{f.labeler, f.shape, f.keep, f.renderer} {
		mtime = max(mtime, node.MTime())
	}

	return mtime
}

// SetForegroundValue sets the value of the object pixels, in the input and in the output.
func (f *Filter[T]) SetForegroundValue(v T) {
	f.labeler.SetForegroundValue(v)
	f.renderer.SetForegroundValue(v)
}

func (f *Filter[T]) ForegroundValue() T {
	return f.labeler.ForegroundValue()
}

// SetBackgroundValue sets the value of the output pixels outside of the kept objects.
func (f *Filter[T]) SetBackgroundValue(v T) {
	f.renderer.SetBackgroundValue(v)
}

func (f *Filter[T]) BackgroundValue() T {
	return f.renderer.BackgroundValue()
}

func (f *Filter[T]) SetFullyConnected(full bool) {
	f.labeler.SetFullyConnected(full)
}

func (f *Filter[T]) FullyConnected() bool {
	return f.labeler.FullyConnected()
}

func (f *Filter[T]) SetNumberOfObjects(n int) {
	f.keep.SetNumberOfObjects(n)
}

func (f *Filter[T]) NumberOfObjects() int {
	return f.keep.NumberOfObjects()
}

func (f *Filter[T]) SetAttribute(attr labelmap.Attribute) {
	f.keep.SetAttribute(attr)
}

func (f *Filter[T]) SetAttributeName(name string) error {
	return f.keep.SetAttributeName(name)
}

func (f *Filter[T]) Attribute() labelmap.Attribute {
	return f.keep.Attribute()
}

func (f *Filter[T]) SetReverseOrdering(reverse bool) {
	f.keep.SetReverseOrdering(reverse)
}

func (f *Filter[T]) ReverseOrdering() bool {
	return f.keep.ReverseOrdering()
}

// Graph returns the inner graph, to inspect the state of the inner nodes.
func (f *Filter[T]) Graph() *pipeline.Graph {
	return f.graph
}

func (f *Filter[T]) OutputInformation(inputs []image.Information) (image.Information, error) {
	if len(inputs) != 1 {
		return image.Information{}, errors.Wrapf(pipeline.ErrInputMustBeSet, "%s expects one input, got %d", f.name, len(inputs))
	}

	if inputs[0].Components != 1 {
		return image.Information{}, errors.Wrapf(pipeline.ErrDimensionMismatch, "%s expects a scalar image, got %d components", f.name, inputs[0].Components)
	}

	return inputs[0].Clone(), nil
}

// InputRequestedRegions asks for the whole input: objects can span any region.
func (f *Filter[T]) InputRequestedRegions(_ image.Region, inputs []image.Information) ([]image.Region, error) {
	if len(inputs) != 1 {
		return nil, errors.Wrapf(pipeline.ErrInputMustBeSet, "%s expects one input, got %d", f.name, len(inputs))
	}

	return []image.Region{inputs[0].LargestRegion.Clone()}, nil
}

func (f *Filter[T]) Execute(ctx context.Context, req *pipeline.Request) (pipeline.DataObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	in, err := pipeline.Input[*image.Image[T]](req, 0)
	if err != nil {
		return nil, err
	}

	var inputTime uint64
	if len(req.InputTimes) > 0 {
		inputTime = req.InputTimes[0]
	}

	if in != f.input || inputTime != f.inputTime || inputTime == 0 {
		f.source.SetData(in)
		f.input = in
		f.inputTime = inputTime
	}

	err = f.graph.SetRequestedRegion(f.outputID, req.Region)
	if err != nil {
		return nil, err
	}

	err = f.graph.Update(ctx, f.outputID)
	if err != nil {
		return nil, errors.Wrapf(err, "%s inner graph", f.name)
	}

	return pipeline.OutputOf[*image.Image[T]](f.graph, f.outputID)
}

// Close runs the finish hooks of the inner graph.
func (f *Filter[T]) Close() error {
	return f.graph.Close()
}

var _ pipeline.Node = (*Filter[uint8])(nil)
