package drawer

import (
	"io"

	"github.com/askiada/go-image-pipeline/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a graph.
type Drawer interface {
	// AddNode adds a node to the drawing.
	AddNode(nodeName string) error
	// AddLink adds a link between an input and the node consuming it.
	AddLink(inputName, nodeName string) error
	// Draw writes the graph to its destination.
	Draw() error
	// DrawTo writes the graph to wrt.
	DrawTo(wrt io.Writer) error
	// AddMeasure annotates nodes and links with a measure.
	AddMeasure(measure measure.Measure) error
}
