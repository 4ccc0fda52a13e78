package router

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rbaliyan/bucketindex"
)

// config is the router configuration.
type config struct {
	numBuckets     int
	indexKeyFields []string
	logger         *slog.Logger
	metricsEnabled bool
	tracingEnabled bool
}

func newRouterConfig() *config {
	return &config{
		numBuckets:     bucketindex.DefaultNumBuckets,
		logger:         slog.Default().With("component", "bucketindex.router"),
		metricsEnabled: true,
		tracingEnabled: true,
	}
}

func (c *config) validate() error {
	if c.numBuckets <= 0 {
		return fmt.Errorf("%w: bucket count must be positive, got %d",
			bucketindex.ErrInvalidConfig, c.numBuckets)
	}
	for _, f := range c.indexKeyFields {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: empty index key field", bucketindex.ErrInvalidConfig)
		}
	}
	return nil
}

// Option configures a Router.
type Option func(*config)

// WithNumBuckets sets the bucket count used when a partition's hashing
// metadata is created lazily on first write. Existing partitions keep the
// bucket count of their persisted layout.
func WithNumBuckets(n int) Option {
	return func(c *config) {
		c.numBuckets = n
	}
}

// WithIndexKeyFields sets the record key fields used as hash input.
// Must match the fields the table's bucket index is configured with, or
// routing diverges from the written layout.
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
