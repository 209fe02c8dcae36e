package accessor

import (
	"github.com/born-ml/numtab/internal/parallel"
)

type options struct {
	parallel parallel.Config
	inPlace  bool
}

func defaultOptions() options {
	return options{parallel: parallel.DefaultConfig()}
}

// Option configures an accessor.
type Option func(*options)

// WithParallel sets how gathers and scatters are split across goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(o *options) {
		o.parallel = cfg
	}
}

// InPlace makes pushes fail with array.ErrImmutable instead of copying
// when the table buffer is shared or read-only.
func InPlace() Option {
	return func(o *options) {
		o.inPlace = true
	}
}
