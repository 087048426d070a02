package pipeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

// Source is a node without inputs that publishes data set by the caller.
type Source struct {
	Filter
	data DataObject
}

// NewSource creates a source node. data can be nil and set later.
func NewSource(name string, data DataObject) *Source {
	return &Source{
		Filter: NewFilter(name),
		data:   data,
	}
}

// SetData replaces the published data.
func (s *Source) SetData(data DataObject) {
	s.data = data
	s.Modified()
}

// Data returns the published data.
func (s *Source) Data() DataObject {
	return s.data
}

func (s *Source) NodeType() model.NodeType {
	return model.SourceNodeType
}

func (s *Source) OutputInformation(_ []image.Information) (image.Information, error) {
	if s.data == nil {
		return image.Information{}, errors.Wrapf(ErrEmptyInput, "source %s has no data", s.Name())
	}

	return s.data.Information(), nil
}

func (s *Source) InputRequestedRegions(_ image.Region, _ []image.Information) ([]image.Region, error) {
	return nil, nil
}

func (s *Source) Execute(_ context.Context, req *Request) (DataObject, error) {
	if s.data == nil {
		return nil, errors.Wrapf(ErrEmptyInput, "source %s has no data", s.Name())
	}

	if !s.data.BufferedRegion().Contains(req.Region) {
		return nil, errors.Wrapf(ErrRegionOutOfBounds, "%s is not buffered by source %s", req.Region, s.Name())
	}

	return s.data, nil
}

var _ Node = (*Source)(nil)
