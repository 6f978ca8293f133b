package seating

import (
	"time"

	"go.uber.org/zap"
)

// SearchConfig configures a single Optimize call: the Search Driver's
// timeout/worker/presolve knobs (spec.md section 4.4), plus the Model
// Builder's constraint cap and optional symmetry breaking (section 4.3).
// Build one with NewSearchConfig and the With* options below. Optimize also
// accepts a directly built value: resolve fills a zero Timeout, Workers or
// MaxSeparation and a nil Logger with the defaults, but leaves Presolve as
// given (off in the zero value).
type SearchConfig struct {
	Timeout           time.Duration
	Workers           int
	Presolve          bool
	MaxSeparation     int
	BreakRoomSymmetry bool
	Logger            *zap.Logger
}

// Option configures a SearchConfig under construction.
type Option func(*SearchConfig)

// NewSearchConfig returns a SearchConfig with spec.md's defaults (120s
// timeout, 4 workers, presolve on, a 50000 separation cap, symmetry
// breaking off) modified by opts.
func NewSearchConfig(opts ...Option) SearchConfig {
	cfg := SearchConfig{
		Timeout:       120 * time.Second,
		Workers:       4,
		Presolve:      true,
		MaxSeparation: DefaultMaxSeparationConstraints,
		Logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTimeout sets the search's wall-clock budget. Panics if d is not
// positive: a construction-time programmer error, not a runtime data error.
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("seating: timeout must be positive")
	}
	return func(c *SearchConfig) { c.Timeout = d }
}

// WithWorkers sets the number of concurrent branch-and-bound search
// workers. Panics if n is not positive.
func WithWorkers(n int) Option {
	if n <= 0 {
		panic("seating: workers must be positive")
	}
	return func(c *SearchConfig) { c.Workers = n }
}

// WithPresolve enables or disables fixed-variable elimination before the
// first relaxation is built.
func WithPresolve(enabled bool) Option {
	return func(c *SearchConfig) { c.Presolve = enabled }
}

// WithConstraintCap sets the separation-constraint emission ceiling.
// Panics if n is not positive.
func WithConstraintCap(n int) Option {
	if n <= 0 {
		panic("seating: constraint cap must be positive")
	}
	return func(c *SearchConfig) { c.MaxSeparation = n }
}

// WithRoomSymmetryBreaking enables the optional y[k] >= y[k+1] tie-breaker
// for identical rooms (spec.md section 9, "Symmetry"). Disabled by default
// because it changes the distribution of returned solutions; enabling it
// is reported back through Diagnostics.SymmetryBroken.
func WithRoomSymmetryBreaking(enabled bool) Option {
	return func(c *SearchConfig) { c.BreakRoomSymmetry = enabled }
}

// WithLogger sets the structured logger Optimize reports its Diagnostics
// summary through. A nil logger is replaced by zap.NewNop() when the option
// is built, so logging is always safe to skip.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		l = zap.NewNop()
	}
	return func(c *SearchConfig) { c.Logger = l }
}

// resolve fills any zero-valued numeric field left by a caller who built
// SearchConfig directly instead of through NewSearchConfig, so Optimize
// itself never rejects caller input for this reason.
func (c SearchConfig) resolve() SearchConfig {
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MaxSeparation <= 0 {
		c.MaxSeparation = DefaultMaxSeparationConstraints
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}
