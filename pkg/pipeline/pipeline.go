package pipeline

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// Pipeline observes the streams tracked with it and everything derived from them.
// It gives stages unique identifiers, forwards stage events to its options and logs them.
type Pipeline struct {
	logger    zerolog.Logger
	startTime time.Time
	ids       map[string]int
	opts      []model.PipelineOption
	mu        sync.Mutex
}

// New creates a new pipeline.
func New(opts ...Option) (*Pipeline, error) {
	pipe := &Pipeline{
		logger:    zerolog.Nop(),
		startTime: time.Now(),
		ids:       make(map[string]int),
	}

	for _, opt := range opts {
		opt(pipe)
	}

	for _, opt := range pipe.opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Logger returns the pipeline logger.
func (p *Pipeline) Logger() *zerolog.Logger {
	return &p.logger
}

// Finish runs the Finish hook of every option, once all the drains returned.
func (p *Pipeline) Finish() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}
	p.logger.Debug().Dur("elapsed", time.Since(p.startTime)).Msg("pipeline finished")

	return nil
}

// Track makes src part of the pipeline. Every stream derived from it by attaching,
// concatenating or draining is observed by the pipeline options.
func Track[T any](p *Pipeline, src Streamer[T]) (*Stream[T], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	stream, err := streamOf(src)
	if err != nil {
		return nil, err
	}
	if stream.pipe == p {
		return stream, nil
	}

	stream.pipe = p
	stream.info = p.register(*stream.info)
	err = p.prepareSource(stream.info)
	if err != nil {
		return nil, err
	}

	return stream, nil
}

// register gives the stage an identifier unique within the pipeline.
func (p *Pipeline) register(info model.StageInfo) *model.StageInfo {
	if p == nil {
		return &info
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ids[info.Name]++
	info.ID = info.Name
	if count := p.ids[info.Name]; count > 1 {
		info.ID = info.Name + "#" + strconv.Itoa(count)
	}

	return &info
}

func (p *Pipeline) prepareSource(stage *model.StageInfo) error {
	if p == nil {
		return nil
	}
	p.logger.Debug().Str("stage", stage.Label()).Str("role", stage.Role.String()).Msg("source tracked")
	for _, opt := range p.opts {
		err := opt.PrepareSource(stage)
		if err != nil {
			return errors.Wrapf(err, "unable to prepare source %s", stage.Label())
		}
	}

	return nil
}

func (p *Pipeline) prepareStage(parent, stage *model.StageInfo) error {
	if p == nil {
		return nil
	}
	p.logger.Debug().Str("stage", stage.Label()).Str("parent", parent.Label()).Msg("stage attached")
	for _, opt := range p.opts {
		err := opt.PrepareStage(parent, stage)
		if err != nil {
			return errors.Wrapf(err, "unable to prepare stage %s", stage.Label())
		}
	}

	return nil
}

func (p *Pipeline) prepareConcat(parents []*model.StageInfo, stage *model.StageInfo) error {
	if p == nil {
		return nil
	}
	p.logger.Debug().Str("stage", stage.Label()).Int("parts", len(parents)).Msg("streams concatenated")
	for _, opt := range p.opts {
		err := opt.PrepareConcat(parents, stage)
		if err != nil {
			return errors.Wrapf(err, "unable to prepare concatenation %s", stage.Label())
		}
	}

	return nil
}

func (p *Pipeline) prepareDrain(parent, stage *model.StageInfo) error {
	if p == nil {
		return nil
	}
	p.logger.Debug().Str("stage", stage.Label()).Str("parent", parent.Label()).Msg("drain attached")
	for _, opt := range p.opts {
		err := opt.PrepareDrain(parent, stage)
		if err != nil {
			return errors.Wrapf(err, "unable to prepare drain %s", stage.Label())
		}
	}

	return nil
}

func (p *Pipeline) onStageOutput(stage *model.StageInfo, elapsed time.Duration) {
	if p == nil {
		return
	}
	for _, opt := range p.opts {
		err := opt.OnStageOutput(stage, elapsed)
		if err != nil {
			// an observer failing must not change what the stream yields
			p.logger.Error().Err(err).Str("stage", stage.Label()).Msg("unable to run stage output hook")
		}
	}
}

func (p *Pipeline) afterDrain(stage *model.StageInfo, elements int64, elapsed time.Duration) error {
	if p == nil {
		return nil
	}
	p.logger.Debug().Str("stage", stage.Label()).Int64("elements", elements).Dur("elapsed", elapsed).Msg("drain finished")
	for _, opt := range p.opts {
		err := opt.AfterDrain(stage, elements, elapsed)
		if err != nil {
			return errors.Wrapf(err, "unable to run after drain %s", stage.Label())
		}
	}

	return nil
}

// RunAll runs independent pipelines concurrently, at most limit at a time (no limit if
// limit <= 0). It returns the first error; the context given to the other jobs is then
// cancelled. Jobs must not share streams.
func RunAll(ctx context.Context, limit int, jobs ...func(ctx context.Context) error) error {
	errGrp, dCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		errGrp.SetLimit(limit)
	}
	for idx, job := range jobs {
		localIdx, localJob := idx, job
		errGrp.Go(func() error {
			err := localJob(dCtx)
			if err != nil {
				return errors.Wrapf(err, "job %d", localIdx)
			}

			return nil
		})
	}

	return errGrp.Wait()
}
