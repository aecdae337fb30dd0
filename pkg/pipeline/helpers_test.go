package pipeline_test

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

func createInput(t *testing.T, total int) []int {
	t.Helper()
	res := make([]int, 0, total)
	for i := range total {
		res = append(res, i)
	}

	return res
}

func collect[T any](t *testing.T, src pipeline.Streamer[T]) []T {
	t.Helper()
	res, err := pipeline.Drain(context.Background(), src, pipeline.ToSlice[T]())
	require.NoError(t, err)

	return res
}

func square(x int) int {
	return x * x
}

// resource records the lifecycle of a source body.
type resource struct {
	opened int
	closed int
	pulled int
}

var resourceSource = pipeline.MakeSource("resource", func(args resourceArgs) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		args.res.opened++
		defer func() {
			args.res.closed++
		}()
		for i := range args.total {
			args.res.pulled++
			if !yield(i, nil) {
				return
			}
		}
	}
})

type resourceArgs struct {
	res   *resource
	total int
}

func newResource(t *testing.T, total int) (*resource, *pipeline.Stream[int]) {
	t.Helper()
	res := &resource{}

	return res, resourceSource(resourceArgs{res: res, total: total})
}

// recordingOption records the pipeline events.
type recordingOption struct {
	failOn  string
	events  []string
	outputs map[string]int
	mu      sync.Mutex
}

func newRecordingOption() *recordingOption {
	return &recordingOption{outputs: make(map[string]int)}
}

func (r *recordingOption) record(event string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if r.failOn == event {
		return assertError(event)
	}

	return nil
}

func (r *recordingOption) New() error {
	return r.record("new")
}

func (r *recordingOption) PrepareSource(stage *model.StageInfo) error {
	return r.record("source " + stage.Label())
}

func (r *recordingOption) PrepareStage(parentStage, stage *model.StageInfo) error {
	return r.record("stage " + parentStage.Label() + " -> " + stage.Label())
}

func (r *recordingOption) OnStageOutput(stage *model.StageInfo, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[stage.Label()]++
	if r.failOn == "output" {
		return assertError("output")
	}

	return nil
}

func (r *recordingOption) PrepareConcat(parentStages []*model.StageInfo, stage *model.StageInfo) error {
	return r.record(fmt.Sprintf("concat %d -> %s", len(parentStages), stage.Label()))
}

func (r *recordingOption) PrepareDrain(parentStage, stage *model.StageInfo) error {
	return r.record("drain " + parentStage.Label() + " -> " + stage.Label())
}

func (r *recordingOption) AfterDrain(stage *model.StageInfo, elements int64, _ time.Duration) error {
	return r.record(fmt.Sprintf("after %s %d", stage.Label(), elements))
}

func (r *recordingOption) Finish() error {
	return r.record("finish")
}

type assertError string

func (e assertError) Error() string {
	return "failed on " + string(e)
}

var _ model.PipelineOption = (*recordingOption)(nil)
