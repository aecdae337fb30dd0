package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline/measure"
	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
}

func (pd *pipelineDrawer) New() error {
	pd.startTime = time.Now()
	err := pd.AddStage(model.StartStage.Label())
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}
	err = pd.AddStage(model.EndStage.Label())
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareSource(stage *model.StageInfo) error {
	return pd.addChild(model.StartStage, stage)
}

func (pd *pipelineDrawer) PrepareStage(parentStage, stage *model.StageInfo) error {
	return pd.addChild(parentStage, stage)
}

func (pd *pipelineDrawer) PrepareConcat(parentStages []*model.StageInfo, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Label())
	if err != nil {
		return err
	}
	for _, parentStage := range parentStages {
		err := pd.AddLink(parentStage.Label(), stage.Label())
		if err != nil {
			return err
		}
	}

	return nil
}

func (pd *pipelineDrawer) PrepareDrain(parentStage, stage *model.StageInfo) error {
	err := pd.addChild(parentStage, stage)
	if err != nil {
		return err
	}

	return pd.AddLink(stage.Label(), model.EndStage.Label())
}

func (pd *pipelineDrawer) addChild(parentStage, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Label())
	if err != nil {
		return err
	}

	return pd.AddLink(parentStage.Label(), stage.Label())
}

func (pd *pipelineDrawer) OnStageOutput(*model.StageInfo, time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) AfterDrain(*model.StageInfo, int64, time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.SetTotalTime(model.EndStage.Label(), pd.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the stages of a pipeline once it finishes. If measure is not nil,
// the graph is annotated with it; it must then be registered with the pipeline as well.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure}
}
