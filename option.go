package bucketindex

import (
	"fmt"
	"log/slog"
	"strings"
)

// DefaultNumBuckets is the bucket count used for partitions written
// without an explicit bucket configuration.
const DefaultNumBuckets = 256

// config is the shared configuration of the index implementations.
type config struct {
	numBuckets     int
	indexKeyFields []string
	logger         *slog.Logger
	metricsEnabled bool
	tracingEnabled bool
}

func newConfig(component string) *config {
	return &config{
		numBuckets:     DefaultNumBuckets,
		logger:         slog.Default().With("component", component),
		metricsEnabled: true,
		tracingEnabled: true,
	}
}

func (c *config) validate() error {
	if c.numBuckets <= 0 {
		return fmt.Errorf("%w: bucket count must be positive, got %d", ErrInvalidConfig, c.numBuckets)
	}
	for _, f := range c.indexKeyFields {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: empty index key field", ErrInvalidConfig)
		}
	}
	return nil
}

// Option configures an index.
type Option func(*config)

// WithNumBuckets sets the bucket count used when a partition's hashing
// metadata is created lazily on first write. Existing partitions keep the
// bucket count of their persisted layout. Default is DefaultNumBuckets.
func WithNumBuckets(n int) Option {
	return func(c *config) {
		c.numBuckets = n
	}
}

// WithIndexKeyFields sets the record key fields used as hash input.
// The fields may be a proper subset of the primary key fields; order
// matters and is part of the persisted layout contract. With no fields
// configured, the whole record key is hashed.
func WithIndexKeyFields(fields ...string) Option {
	return func(c *config) {
		c.indexKeyFields = fields
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables or disables OpenTelemetry metrics. Default is true.
func WithMetrics(enabled bool) Option {
	return func(c *config) {
		c.metricsEnabled = enabled
	}
}

// WithTracing enables or disables OpenTelemetry tracing. Default is true.
func WithTracing(enabled bool) Option {
	return func(c *config) {
		c.tracingEnabled = enabled
	}
}
