package drawer

import (
	"time"

	"github.com/askiada/go-lazypipe/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStage adds a stage to the pipeline drawer.
	AddStage(name string) error
	// AddLink adds a link between a parent stage and its child.
	AddLink(parentName, childName string) error
	// Draw creates a file with the pipeline graph.
	Draw() error
	// SetTotalTime sets the time elapsed since startTime on the stage.
	SetTotalTime(stageName string, startTime time.Time) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
}
