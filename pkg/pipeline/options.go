package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// Option configures a Pipeline.
type Option func(p *Pipeline)

// WithOptions registers pipeline options such as measure or drawer.
func WithOptions(opts ...model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.opts = append(p.opts, opts...)
	}
}

// WithLogger sets the logger used for the stages of the pipeline.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

type streamConfig struct {
	name   string
	length LengthPolicy
}

func newStreamConfig(name string, opts ...StreamOption) streamConfig {
	cfg := streamConfig{name: name}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// StreamOption configures a stream built by New, FromSlice, FromSeq, FromSeq2 or FromFunc.
type StreamOption func(c *streamConfig)

// WithName names the stream, the name shows up in logs and graphs.
func WithName(name string) StreamOption {
	return func(c *streamConfig) {
		c.name = name
	}
}

// WithLength sets the length policy of the stream.
func WithLength(policy LengthPolicy) StreamOption {
	return func(c *streamConfig) {
		c.length = policy
	}
}

type stageConfig struct {
	lengthFunc any
	length     LengthPolicy
}

// StageOption configures a stage built by a factory.
type StageOption func(c *stageConfig)

// StageLength declares the length policy of the streams built by the stage.
func StageLength(policy LengthPolicy) StageOption {
	return func(c *stageConfig) {
		c.length = policy
	}
}

// SourceLengthFunc computes the length of a source stream from its arguments.
// It is called once, when the source is invoked, and the result is pinned as Fixed.
// If it fails, the error is reported by Len. A function whose argument type is not the
// one of the source, or one given to a pipe, is an ErrConfiguration.
func SourceLengthFunc[A any](fn func(args A) (int, error)) StageOption {
	return func(c *stageConfig) {
		c.lengthFunc = fn
	}
}
