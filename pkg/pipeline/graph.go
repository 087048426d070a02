package pipeline

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/askiada/go-image-pipeline/internal/autoscaler"
	"github.com/askiada/go-image-pipeline/internal/logger"
	"github.com/askiada/go-image-pipeline/internal/store"
	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

// NodeID identifies a node in its graph.
type NodeID int

// State is the update state of a node.
type State int

const (
	Stale State = iota
	RegionPropagating
	Executing
	UpToDate
)

var stateNames = [...]string{"stale", "region-propagating", "executing", "up-to-date"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

func parseState(value string) State {
	for i, name := range stateNames {
		if name == value {
			return State(i)
		}
	}

	return Stale
}

const stateAttribute = "state"

var discardLogger = logger.Discard()

type vertex struct {
	id         NodeID
	node       Node
	details    *model.NodeInfo
	inputs     []NodeID
	wiredAt    uint64
	output     DataObject
	info       image.Information
	requested  *image.Region
	region     image.Region
	updateTime uint64
}

// Graph is a demand-driven graph of nodes. It is not safe for concurrent updates.
type Graph struct {
	mu       sync.Mutex
	vertices []*vertex
	store    store.CustomStore[NodeID, NodeID]
	graph    graph.Graph[NodeID, NodeID]
	workers  int
	logger   logrus.FieldLogger
	hooks    []model.GraphOption
}

func nodeLess(a, b NodeID) bool {
	return a < b
}

func nodeHash(id NodeID) NodeID {
	return id
}

// New creates an empty graph.
func New(opts ...Option) (*Graph, error) {
	s := store.NewMemoryStore[NodeID, NodeID](nodeLess)

	g := &Graph{
		store:  s,
		graph:  graph.NewWithStore[NodeID, NodeID](nodeHash, s, graph.Directed(), graph.PreventCycles()),
		logger: logger.Logger,
	}

	for _, opt := range opts {
		opt(g)
	}

	for _, hook := range g.hooks {
		err := hook.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply graph option")
		}
	}

	return g, nil
}

func (g *Graph) vertex(id NodeID) (*vertex, error) {
	if id < 0 || int(id) >= len(g.vertices) {
		return nil, errors.Wrapf(ErrUnknownNode, "id %d", id)
	}

	return g.vertices[id], nil
}

// Add registers node with the given inputs and returns its id.
func (g *Graph) Add(node Node, inputs ...NodeID) (NodeID, error) {
	if node == nil {
		return 0, ErrNodeMustBeSet
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	inputDetails := make([]*model.NodeInfo, len(inputs))

	for i, in := range inputs {
		v, err := g.vertex(in)
		if err != nil {
			return 0, errors.Wrapf(err, "input %d of %s", i, node.Name())
		}

		inputDetails[i] = v.details
	}

	id := NodeID(len(g.vertices))
	v := &vertex{
		id:   id,
		node: node,
		details: &model.NodeInfo{
			Type:    nodeType(node),
			Name:    node.Name(),
			ID:      int(id),
			Workers: g.workers,
		},
		inputs:  slices.Clone(inputs),
		wiredAt: Tick(),
	}

	err := g.graph.AddVertex(id, graph.VertexAttribute(stateAttribute, Stale.String()))
	if err != nil {
		return 0, errors.Wrapf(err, "unable to add node %s", node.Name())
	}

	g.vertices = append(g.vertices, v)

	for _, in := range inputs {
		err := g.graph.AddEdge(in, id)
		if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
			return 0, errors.Wrapf(err, "unable to link %s to %s", g.vertices[in].details.Label(), v.details.Label())
		}
	}

	for _, hook := range g.hooks {
		err := hook.PrepareNode(inputDetails, v.details)
		if err != nil {
			return 0, errors.Wrap(err, "unable to run prepare node function")
		}
	}

	logger.WithNode(g.logger, int(id), node.Name()).WithField("inputs", inputs).Debug("node added")

	return id, nil
}

// SetInput replaces input index of node id. Rewiring counts as a parameter change of id.
func (g *Graph) SetInput(id NodeID, index int, input NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.vertex(id)
	if err != nil {
		return err
	}

	if _, err := g.vertex(input); err != nil {
		return err
	}

	if index < 0 || index >= len(v.inputs) {
		return errors.Wrapf(ErrInputMustBeSet, "%s has no input %d", v.details.Label(), index)
	}

	old := v.inputs[index]
	if old == input {
		return nil
	}

	err = g.graph.AddEdge(input, id)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to link %s to %s", g.vertices[input].details.Label(), v.details.Label())
	}

	v.inputs[index] = input

	if !slices.Contains(v.inputs, old) {
		err = g.graph.RemoveEdge(old, id)
		if err != nil {
			return errors.Wrapf(err, "unable to unlink %s from %s", g.vertices[old].details.Label(), v.details.Label())
		}
	}

	v.wiredAt = Tick()

	return nil
}

// Inputs returns the inputs of id in input order.
func (g *Graph) Inputs(id NodeID) ([]NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.vertex(id)
	if err != nil {
		return nil, err
	}

	return slices.Clone(v.inputs), nil
}

// Node returns the node registered as id.
func (g *Graph) Node(id NodeID) (Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.vertex(id)
	if err != nil {
		return nil, err
	}

	return v.node, nil
}

// SetRequestedRegion sets the region the next Update of id produces. An empty Region
// restores the default, the largest region of the node output.
func (g *Graph) SetRequestedRegion(id NodeID, region image.Region) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.vertex(id)
	if err != nil {
		return err
	}

	if region.Dimension() == 0 {
		v.requested = nil

		return nil
	}

	r := region.Clone()
	v.requested = &r

	return nil
}

// RequestedRegion returns the region set with SetRequestedRegion, or the region computed by the last update.
func (g *Graph) RequestedRegion(id NodeID) (image.Region, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.vertex(id)
	if err != nil {
		return image.Region{}, err
	}

	if v.requested != nil {
		return v.requested.Clone(), nil
	}

	return v.region.Clone(), nil
}

// State returns the state of id. A node recorded as up to date is reported Stale as soon as its own
// parameters, its wiring or any of its ancestors changed after its last execution.
func (g *Graph) State(id NodeID) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.vertex(id)
	if err != nil {
		return Stale, err
	}

	return g.state(v), nil
}

func (g *Graph) state(v *vertex) State {
	value, _ := g.store.VertexAttribute(v.id, stateAttribute)

	recorded := parseState(value)
	if recorded != UpToDate {
		return recorded
	}

	ancestors, err := g.store.Ancestors(v.id)
	if err != nil {
		return Stale
	}

	for _, id := range ancestors {
		a := g.vertices[id]
		if a.node.MTime() > v.updateTime || a.wiredAt > v.updateTime {
			return Stale
		}

		if id != v.id && (a.output == nil || a.updateTime > v.updateTime) {
			return Stale
		}
	}

	return UpToDate
}

func (g *Graph) setState(v *vertex, state State) {
	err := g.store.UpdateVertex(v.id, graph.VertexAttribute(stateAttribute, state.String()))
	if err != nil {
		logger.WithNode(g.logger, int(v.id), v.details.Name).WithError(err).Warn("unable to record state")
	}
}

// Output returns the cached output of id.
func (g *Graph) Output(id NodeID) (DataObject, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	v, err := g.vertex(id)
	if err != nil {
		return nil, err
	}

	if v.output == nil || g.state(v) != UpToDate {
		return nil, errors.Wrap(ErrNotUpToDate, v.details.Label())
	}

	return v.output, nil
}

// OutputOf returns the cached output of id as a T.
func OutputOf[T DataObject](g *Graph, id NodeID) (T, error) {
	var zero T

	out, err := g.Output(id)
	if err != nil {
		return zero, err
	}

	res, ok := out.(T)
	if !ok {
		return zero, errors.Wrapf(ErrTypeMismatch, "output of node %d is a %T, not a %T", id, out, zero)
	}

	return res, nil
}

// Update brings id and everything upstream of it up to date.
func (g *Graph) Update(ctx context.Context, id NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()

	target, err := g.vertex(id)
	if err != nil {
		return err
	}

	order, err := g.order(id)
	if err != nil {
		return err
	}

	err = g.propagateInformation(order)
	if err != nil {
		return err
	}

	err = g.propagateRegions(order, target)
	if err != nil {
		return err
	}

	err = g.execute(ctx, order)
	if err != nil {
		return err
	}

	for _, hook := range g.hooks {
		err := hook.AfterUpdate(target.details, time.Since(start))
		if err != nil {
			return errors.Wrap(err, "unable to run after update function")
		}
	}

	return nil
}

// order returns id and its ancestors, upstream first.
func (g *Graph) order(id NodeID) ([]NodeID, error) {
	ancestors, err := g.store.Ancestors(id)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to collect ancestors of node %d", id)
	}

	sorted, err := graph.StableTopologicalSort(g.graph, nodeLess)
	if err != nil {
		return nil, errors.Wrap(err, "unable to sort nodes")
	}

	res := make([]NodeID, 0, len(ancestors))

	for _, v := range sorted {
		if _, found := slices.BinarySearch(ancestors, v); found {
			res = append(res, v)
		}
	}

	return res, nil
}

func (g *Graph) inputInformation(v *vertex) []image.Information {
	infos := make([]image.Information, len(v.inputs))
	for i, in := range v.inputs {
		infos[i] = g.vertices[in].info
	}

	return infos
}

func (g *Graph) propagateInformation(order []NodeID) error {
	for _, id := range order {
		v := g.vertices[id]

		info, err := v.node.OutputInformation(g.inputInformation(v))
		if err != nil {
			return g.fail(order, v, err)
		}

		v.info = info
	}

	return nil
}

func (g *Graph) propagateRegions(order []NodeID, target *vertex) error {
	largest := target.info.LargestRegion

	requested := largest.Clone()
	if target.requested != nil {
		if !largest.Contains(*target.requested) {
			return g.fail(order, target, errors.Wrapf(ErrRegionOutOfBounds, "%s requested in %s", target.requested, largest))
		}

		requested = target.requested.Clone()
	}

	regions := map[NodeID]image.Region{target.id: requested}

	for i := len(order) - 1; i >= 0; i-- {
		v := g.vertices[order[i]]
		g.setState(v, RegionPropagating)

		region, ok := regions[v.id]
		if !ok {
			region = image.NewRegion(v.info.LargestRegion.Index, make([]int, v.info.LargestRegion.Dimension()))
		}

		v.region = region

		if len(v.inputs) == 0 {
			continue
		}

		inRegions, err := v.node.InputRequestedRegions(region.Clone(), g.inputInformation(v))
		if err != nil {
			return g.fail(order, v, err)
		}

		if len(inRegions) != len(v.inputs) {
			return g.fail(order, v, errors.Wrapf(ErrDimensionMismatch, "%d regions requested for %d inputs", len(inRegions), len(v.inputs)))
		}

		for k, inID := range v.inputs {
			in := g.vertices[inID]
			inLargest := in.info.LargestRegion

			if inRegions[k].Dimension() != inLargest.Dimension() {
				return g.fail(order, v, errors.Wrapf(ErrDimensionMismatch, "region %s requested from %s", inRegions[k], in.details.Label()))
			}

			r, ok := inLargest.Crop(inRegions[k])
			if !ok {
				r = image.NewRegion(inLargest.Index, make([]int, inLargest.Dimension()))
			}

			for _, hook := range g.hooks {
				err := hook.OnRegionRequested(in.details, v.details, r.NumberOfPixels())
				if err != nil {
					return errors.Wrap(err, "unable to run region requested function")
				}
			}

			if prev, ok := regions[inID]; ok {
				r = prev.Union(r)
			}

			regions[inID] = r
		}
	}

	return nil
}

func (g *Graph) needsExecution(v *vertex) bool {
	if v.output == nil || v.node.MTime() > v.updateTime || v.wiredAt > v.updateTime {
		return true
	}

	for _, in := range v.inputs {
		if g.vertices[in].updateTime > v.updateTime {
			return true
		}
	}

	return !v.output.BufferedRegion().Contains(v.region)
}

func (g *Graph) execute(ctx context.Context, order []NodeID) error {
	for _, id := range order {
		v := g.vertices[id]
		log := logger.WithNode(g.logger, int(v.id), v.details.Name)

		if err := ctx.Err(); err != nil {
			g.reset(order)

			return errors.Wrapf(err, "update interrupted before %s", v.details.Label())
		}

		if !g.needsExecution(v) {
			g.setState(v, UpToDate)

			for _, hook := range g.hooks {
				err := hook.OnNodeSkipped(v.details)
				if err != nil {
					return errors.Wrap(err, "unable to run node skipped function")
				}
			}

			log.Debug("node skipped")

			continue
		}

		g.setState(v, Executing)

		inputs := make([]DataObject, len(v.inputs))
		times := make([]uint64, len(v.inputs))

		for i, in := range v.inputs {
			inputs[i] = g.vertices[in].output
			times[i] = g.vertices[in].updateTime
		}

		req := &Request{
			Inputs:     inputs,
			InputTimes: times,
			Info:       v.info.Clone(),
			Region:     v.region.Clone(),
			Logger:     log,
			scaler:     autoscaler.New(g.workers),
		}

		startFn := time.Now()

		out, err := v.node.Execute(ctx, req)
		if err == nil && out == nil {
			err = errors.Wrap(ErrEmptyInput, "no output produced")
		}

		if err == nil && !out.BufferedRegion().Contains(v.region) {
			err = errors.Wrapf(ErrRegionOutOfBounds, "output buffers %s, %s was requested", out.BufferedRegion(), v.region)
		}

		if err != nil {
			return g.fail(order, v, err)
		}

		elapsed := time.Since(startFn)

		v.output = out
		v.updateTime = Tick()
		g.setState(v, UpToDate)

		for _, hook := range g.hooks {
			err := hook.OnNodeExecuted(v.details, elapsed)
			if err != nil {
				return errors.Wrap(err, "unable to run node executed function")
			}
		}

		log.WithFields(logrus.Fields{
			"duration": elapsed,
			"pixels":   v.region.NumberOfPixels(),
		}).Debug("node executed")
	}

	return nil
}

// reset marks every node of order that did not reach UpToDate as Stale.
func (g *Graph) reset(order []NodeID) {
	for _, id := range order {
		v := g.vertices[id]

		value, _ := g.store.VertexAttribute(id, stateAttribute)
		if parseState(value) != UpToDate {
			g.setState(v, Stale)
		}
	}
}

// fail discards the output of v, leaves it Stale and wraps err with its label.
func (g *Graph) fail(order []NodeID, v *vertex, err error) error {
	v.output = nil
	v.updateTime = 0
	g.setState(v, Stale)
	g.reset(order)

	logger.WithNode(g.logger, int(v.id), v.details.Name).WithError(err).Warn("node failed")

	return errors.Wrapf(err, "node %s", v.details.Label())
}

// Close runs the finish function of every graph option.
func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, hook := range g.hooks {
		err := hook.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish graph option")
		}
	}

	return nil
}
