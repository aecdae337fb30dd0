package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
	"github.com/askiada/go-lazypipe/pkg/pipeline/drawer"
	"github.com/askiada/go-lazypipe/pkg/pipeline/measure"
	"github.com/askiada/go-lazypipe/pkg/shell"
)

// Runner runs the pipelines described by a Config.
type Runner struct {
	cfg     *Config
	session *shell.Session
	stdout  io.Writer
	logger  zerolog.Logger
}

// NewRunner creates a runner reading and writing files through session.
func NewRunner(cfg *Config, session *shell.Session, stdout io.Writer, logger zerolog.Logger) *Runner {
	return &Runner{cfg: cfg, session: session, stdout: stdout, logger: logger}
}

// Run prints the concatenated files, or counts their lines in count mode.
func (r *Runner) Run(ctx context.Context) error {
	if r.cfg.Count {
		return r.count(ctx)
	}

	return r.cat(ctx)
}

func (r *Runner) cat(ctx context.Context) error {
	var msr *measure.DefaultMeasure
	opts := []pipeline.Option{pipeline.WithLogger(r.logger)}
	if r.cfg.Measure || r.cfg.Graph != "" {
		msr = measure.NewDefaultMeasure()
		opts = append(opts, pipeline.WithOptions(measure.PipelineMeasure(msr)))
	}
	if r.cfg.Graph != "" {
		dotDrawer := drawer.NewDOTDrawer(r.session.Fs(), r.session.Abs(r.cfg.Graph), drawer.GraphAttribute("rankdir", "LR"))
		opts = append(opts, pipeline.WithOptions(drawer.PipelineDrawer(dotDrawer, msr)))
	}

	pipe, err := pipeline.New(opts...)
	if err != nil {
		return errors.Wrap(err, "unable to create pipeline")
	}

	parts := make([]pipeline.Streamer[string], 0, len(r.cfg.Files))
	for _, file := range r.cfg.Files {
		src := r.session.Cat(file)
		if r.cfg.WithLen {
			src = r.session.CatWithLen(file)
		}
		tracked, err := pipeline.Track[string](pipe, src)
		if err != nil {
			return errors.Wrapf(err, "unable to track %s", file)
		}
		parts = append(parts, tracked)
	}

	lines, err := pipeline.Concat(parts...)
	if err != nil {
		return errors.Wrap(err, "unable to concatenate files")
	}
	if r.cfg.Number {
		lines, err = numberLines(lines)
		if err != nil {
			return err
		}
	}
	if r.cfg.WithLen {
		total, err := lines.Len()
		if err != nil {
			r.logger.Warn().Err(err).Msg("unable to get the number of lines")
		} else {
			r.logger.Info().Int("lines", total).Msg("lines to read")
		}
	}

	sink := shell.Echo[string](r.stdout)
	if r.cfg.Output != "" {
		mode := shell.Truncate
		if r.cfg.Append {
			mode = shell.Append
		}
		sink = r.session.ToFile(r.cfg.Output, mode)
	}
	written, err := pipeline.Drain(ctx, lines, sink)
	if err != nil {
		return errors.Wrap(err, "unable to write lines")
	}

	err = pipe.Finish()
	if err != nil {
		return errors.Wrap(err, "unable to finish pipeline")
	}
	if r.cfg.Measure {
		measure.Report(&r.logger, msr)
	}
	r.logger.Debug().Int("lines", written).Msg("lines written")

	return nil
}

func numberLines(lines *pipeline.Stream[string]) (*pipeline.Stream[string], error) {
	numbered, err := pipeline.Then[string, pipeline.Indexed[string]](lines, pipeline.Enumerate[string](1))
	if err != nil {
		return nil, errors.Wrap(err, "unable to number lines")
	}

	return pipeline.Then[pipeline.Indexed[string], string](numbered, pipeline.ElementFunc[pipeline.Indexed[string], string](formatNumbered))
}

func formatNumbered(line pipeline.Indexed[string]) string {
	return fmt.Sprintf("%6d\t%s", line.Index, line.Value)
}

// count counts the lines of every file, each file in its own pipeline.
func (r *Runner) count(ctx context.Context) error {
	counts := make([]int, len(r.cfg.Files))
	jobs := make([]func(ctx context.Context) error, 0, len(r.cfg.Files))
	for idx, file := range r.cfg.Files {
		jobs = append(jobs, func(ctx context.Context) error {
			logger := r.logger.With().Str("file", file).Logger()
			opts := []pipeline.Option{pipeline.WithLogger(logger)}
			var msr *measure.DefaultMeasure
			if r.cfg.Measure {
				msr = measure.NewDefaultMeasure()
				opts = append(opts, pipeline.WithOptions(measure.PipelineMeasure(msr)))
			}
			pipe, err := pipeline.New(opts...)
			if err != nil {
				return errors.Wrap(err, "unable to create pipeline")
			}
			src, err := pipeline.Track[string](pipe, r.session.Cat(file))
			if err != nil {
				return errors.Wrapf(err, "unable to track %s", file)
			}
			counts[idx], err = pipeline.Drain(ctx, src, pipeline.Count[string]())
			if err != nil {
				return errors.Wrapf(err, "unable to count lines of %s", file)
			}
			err = pipe.Finish()
			if err != nil {
				return errors.Wrap(err, "unable to finish pipeline")
			}
			if msr != nil {
				measure.Report(&logger, msr)
			}

			return nil
		})
	}

	err := pipeline.RunAll(ctx, r.cfg.Jobs, jobs...)
	if err != nil {
		return err
	}

	total := 0
	for idx, file := range r.cfg.Files {
		total += counts[idx]
		_, err := fmt.Fprintf(r.stdout, "%8d %s\n", counts[idx], file)
		if err != nil {
			return errors.Wrap(err, "unable to write count")
		}
	}
	if len(r.cfg.Files) > 1 {
		_, err := fmt.Fprintf(r.stdout, "%8d total\n", total)
		if err != nil {
			return errors.Wrap(err, "unable to write count")
		}
	}

	return nil
}
