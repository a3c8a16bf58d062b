package tutormark

import (
	"time"

	"github.com/sirupsen/logrus"
)

// pipelineOptions holds options for a Pipeline.
type pipelineOptions struct {
	Config  *Config
	Render  *RenderConfig
	Logger  logrus.FieldLogger
	Metrics *Metrics
	delay   *time.Duration
}

// Option is a function that configures a Pipeline.
type Option func(*pipelineOptions)

// WithConfig sets the pipeline configuration.
func WithConfig(cfg *Config) Option {
	return func(opts *pipelineOptions) {
		if cfg != nil {
			opts.Config = cfg
		}
	}
}

// WithRenderConfig sets a custom RenderConfig.
func WithRenderConfig(cfg *RenderConfig) Option {
	return func(opts *pipelineOptions) {
		opts.Render = cfg
	}
}

// WithLogger 使用指定的日志记录器代替全局 Logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(opts *pipelineOptions) {
		opts.Logger = logger
	}
}

// WithMetrics 记录 Prometheus 计数
func WithMetrics(m *Metrics) Option {
	return func(opts *pipelineOptions) {
		opts.Metrics = m
	}
}

// WithChunkDelay 覆盖配置中的分片间隔；0 表示不等待
func WithChunkDelay(d time.Duration) Option {
	return func(opts *pipelineOptions) {
		opts.delay = &d
	}
}

// defaultPipelineOptions returns the default pipeline options.
func defaultPipelineOptions() *pipelineOptions {
	return &pipelineOptions{
		Config: DefaultConfig(),
		Render: DefaultRenderConfig(),
	}
}

// applyOptions applies the given options to the default options.
func applyOptions(opts ...Option) *pipelineOptions {
	options := defaultPipelineOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Render == nil {
		options.Render = DefaultRenderConfig()
	}
	cfg := *options.Config
	cfg.fillDefaults()
	if options.delay != nil {
		cfg.ChunkDelay = *options.delay
	}
	if cfg.ChunkDelay < 0 {
		cfg.ChunkDelay = 0
	}
	options.Config = &cfg
	return options
}
