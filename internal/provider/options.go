package provider

import (
	"fmt"
	"time"
)

// Options contains optional configuration for the Registry.
// NewOptions should be used to create instances of Options.
type Options struct {
	// ProbeTimeout specifies how long a single health probe may run.
	ProbeTimeout time.Duration
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := defaultOptions()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithProbeTimeout configures how long a single health probe may run.
func WithProbeTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("probe timeout must be positive, got %v", timeout)
		}
		o.ProbeTimeout = timeout
		return nil
	}
}

// DefaultProbeTimeout is the default time budget for a single health probe.
func DefaultProbeTimeout() time.Duration {
	return 10 * time.Second
}

func defaultOptions() Options {
	return Options{
		ProbeTimeout: DefaultProbeTimeout(),
	}
}
