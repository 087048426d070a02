package pipeline

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-image-pipeline/internal/autoscaler"
	"github.com/askiada/go-image-pipeline/pkg/image"
)

// Request carries everything a node needs to execute.
type Request struct {
	// Inputs holds the up to date outputs of the node inputs, in input order.
	Inputs []DataObject
	// InputTimes holds the clock value at which every input was produced. Requests built with
	// NewRequest leave it empty.
	InputTimes []uint64
	// Info is the output information computed during the information pass.
	Info image.Information
	// Region is the region the output must buffer.
	Region image.Region
	// Logger carries the node fields.
	Logger logrus.FieldLogger

	scaler *autoscaler.AutoScaler
}

// NewRequest builds a request outside of a graph, for composite nodes and tests.
func NewRequest(info image.Information, region image.Region, workers int, inputs ...DataObject) *Request {
	return &Request{
		Inputs: inputs,
		Info:   info,
		Region: region,
		Logger: discardLogger,
		scaler: autoscaler.New(workers),
	}
}

// Workers returns the maximum number of goroutines the node may use.
func (r *Request) Workers() int {
	return r.scaler.Workers(math.MaxInt, math.MaxInt)
}

// Split partitions region into disjoint sub-regions, never cutting lineAxis, and calls fn for every
// one of them from a bounded set of goroutines. It returns the first error once every worker joined.
func (r *Request) Split(ctx context.Context, region image.Region, lineAxis int, fn func(ctx context.Context, sub image.Region) error) error {
	axis := splitAxis(region, lineAxis)
	if axis < 0 {
		return fn(ctx, region)
	}

	workers := r.scaler.Workers(region.NumberOfPixels(), region.Size[axis])
	if workers == 1 {
		return fn(ctx, region)
	}

	splitter := NewSplitter(region, axis, workers)

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(workers)

	for goIdx := 0; goIdx < workers; goIdx++ {
		localGoIdx := goIdx
		errGrp.Go(func() error {
			for sub, ok := splitter.Get(); ok; sub, ok = splitter.Get() {
				if err := dCtx.Err(); err != nil {
					return errors.Wrapf(err, "go routine %d", localGoIdx)
				}

				err := fn(dCtx, sub)
				if err != nil {
					return errors.Wrapf(err, "go routine %d", localGoIdx)
				}
			}

			return nil
		})
	}

	return errGrp.Wait()
}

// Partition returns the sub-regions Split would use for region, in scan order. Nodes that must merge
// per partition results in order run them with ForEach.
func (r *Request) Partition(region image.Region, lineAxis int) []image.Region {
	axis := splitAxis(region, lineAxis)
	if axis < 0 {
		return []image.Region{region.Clone()}
	}

	return SplitRegion(region, axis, r.scaler.Workers(region.NumberOfPixels(), region.Size[axis]))
}

// ForEach calls fn for every index in [0, total) from a bounded set of goroutines.
func (r *Request) ForEach(ctx context.Context, total int, fn func(ctx context.Context, idx int) error) error {
	if total <= 0 {
		return nil
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(r.scaler.Workers(math.MaxInt, total))

	for idx := 0; idx < total; idx++ {
		localIdx := idx
		errGrp.Go(func() error {
			if err := dCtx.Err(); err != nil {
				return err
			}

			return fn(dCtx, localIdx)
		})
	}

	return errGrp.Wait()
}

// Input returns input i of req as a T.
func Input[T DataObject](req *Request, i int) (T, error) {
	var zero T

	if i < 0 || i >= len(req.Inputs) || req.Inputs[i] == nil {
		return zero, errors.Wrapf(ErrInputMustBeSet, "input %d", i)
	}

	in, ok := req.Inputs[i].(T)
	if !ok {
		return zero, errors.Wrapf(ErrTypeMismatch, "input %d is a %T, not a %T", i, req.Inputs[i], zero)
	}

	return in, nil
}
