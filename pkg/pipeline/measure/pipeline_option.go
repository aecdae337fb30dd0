package measure

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
	startTime time.Time
}

func (pm *pipelineMeasure) New() error {
	pm.startTime = time.Now()
	pm.AddMetric(model.StartStage.Label())
	pm.AddMetric(model.EndStage.Label())

	return nil
}

func (pm *pipelineMeasure) PrepareSource(stage *model.StageInfo) error {
	pm.AddMetric(stage.Label())

	return nil
}

func (pm *pipelineMeasure) PrepareStage(_, stage *model.StageInfo) error {
	pm.AddMetric(stage.Label())

	return nil
}

func (pm *pipelineMeasure) OnStageOutput(stage *model.StageInfo, pullDuration time.Duration) error {
	mt := pm.GetMetric(stage.Label())
	if mt == nil {
		return errors.Errorf("no metric for stage %s", stage.Label())
	}
	mt.AddDuration(pullDuration)

	return nil
}

func (pm *pipelineMeasure) PrepareConcat(_ []*model.StageInfo, stage *model.StageInfo) error {
	pm.AddMetric(stage.Label())

	return nil
}

func (pm *pipelineMeasure) PrepareDrain(_, stage *model.StageInfo) error {
	pm.AddMetric(stage.Label())

	return nil
}

func (pm *pipelineMeasure) AfterDrain(stage *model.StageInfo, elements int64, totalDuration time.Duration) error {
	mt := pm.GetMetric(stage.Label())
	if mt == nil {
		return errors.Errorf("no metric for drain %s", stage.Label())
	}
	mt.AddElements(elements)
	mt.SetTotalDuration(totalDuration)
	pm.GetMetric(model.EndStage.Label()).AddElements(elements)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	pm.GetMetric(model.EndStage.Label()).SetTotalDuration(time.Since(pm.startTime))

	return nil
}

// PipelineMeasure records in measure the activity of every stage of a pipeline.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{Measure: measure}
}
