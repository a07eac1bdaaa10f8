package index

import "go.uber.org/zap"

const defaultBatchSize = 500

type options struct {
	log       *zap.Logger
	batchSize int
}

// Option configures a Writer or a Pool.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithBatchSize sets how many documents a rebuild buffers before flushing
// them to the staging generation.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		log:       zap.NewNop(),
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
