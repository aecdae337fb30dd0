package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	pipelineSourceOption
	pipelineStageOption
	pipelineConcatOption
	pipelineDrainOption

	// Finish runs after the pipeline is finished.
	Finish() error
}

// pipelineSourceOption defines the interface for source options at the pipeline level.
type pipelineSourceOption interface {
	// PrepareSource runs when a stream joins the pipeline without a parent stage.
	PrepareSource(stage *StageInfo) error
}

// pipelineStageOption defines the interface for pipe options at the pipeline level.
type pipelineStageOption interface {
	// PrepareStage runs when a pipe stage is attached to its upstream.
	PrepareStage(parentStage, stage *StageInfo) error
	// OnStageOutput runs everytime an element is pulled out of the stage.
	OnStageOutput(stage *StageInfo, pullDuration time.Duration) error
}

// pipelineConcatOption defines the interface for concatenation options at the pipeline level.
type pipelineConcatOption interface {
	// PrepareConcat runs when several streams are joined one after the other.
	PrepareConcat(parentStages []*StageInfo, stage *StageInfo) error
}

// pipelineDrainOption defines the interface for drain options at the pipeline level.
type pipelineDrainOption interface {
	// PrepareDrain runs before the drain consumes its upstream.
	PrepareDrain(parentStage, stage *StageInfo) error
	// AfterDrain runs once the drain returned, with the number of elements it consumed.
	AfterDrain(stage *StageInfo, elements int64, totalDuration time.Duration) error
}
