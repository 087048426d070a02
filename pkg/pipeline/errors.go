package pipeline

import (
	"github.com/pkg/errors"

	"github.com/askiada/go-image-pipeline/pkg/image"
)

var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrEmptyInput        = errors.New("empty input")
	ErrNumericOverflow   = errors.New("numeric overflow")

	ErrNodeMustBeSet     = errors.New("node must be set")
	ErrInputMustBeSet    = errors.New("input must be set")
	ErrUnknownNode       = errors.New("unknown node")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrNotUpToDate       = errors.New("node is not up to date")
	ErrRegionOutOfBounds = image.ErrRegionOutOfBounds
)
