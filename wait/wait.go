// Package wait polls conditions with configurable retry strategies.
package wait

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Common errors
var (
	ErrTimeout           = errors.New("wait: timeout exceeded")
	ErrMaxRetriesReached = errors.New("wait: maximum retries reached")
	ErrCanceled          = errors.New("wait: operation canceled")
)

// ConditionFunc represents a function that returns true when a condition is met
type ConditionFunc func() (bool, error)

// Strategy defines the interface for wait strategies
type Strategy interface {
	Next() (time.Duration, bool)
	Reset()
}

// Options configures wait behavior
type Options struct {
	MaxRetries int
	Timeout    time.Duration
	Strategy   Strategy
	Context    context.Context
}

// DefaultOptions returns default wait options
func DefaultOptions() *Options {
	return &Options{
		MaxRetries: 10,
		Timeout:    30 * time.Second,
		Strategy:   NewFixedStrategy(1 * time.Second),
		Context:    context.Background(),
	}
}

// WithMaxRetries sets the maximum number of retries
func (o *Options) WithMaxRetries(n int) *Options {
	o.MaxRetries = n
	return o
}

// WithTimeout sets the overall timeout
func (o *Options) WithTimeout(d time.Duration) *Options {
	o.Timeout = d
	return o
}

// WithStrategy sets the wait strategy
func (o *Options) WithStrategy(s Strategy) *Options {
	o.Strategy = s
	return o
}

// WithContext sets the context for cancellation
func (o *Options) WithContext(ctx context.Context) *Options {
	o.Context = ctx
	return o
}

// Until waits until the condition returns true or an error occurs
func Until(condition ConditionFunc, opts ...*Options) error {
	options := mergeOptions(opts...)

	ctx, cancel := context.WithTimeout(options.Context, options.Timeout)
	defer cancel()

	options.Strategy.Reset()
	attempts := 0

	for {
		ok, err := condition()
		if err != nil {
			return fmt.Errorf("wait: condition error: %w", err)
		}
		if ok {
			return nil
		}

		attempts++
		if options.MaxRetries > 0 && attempts >= options.MaxRetries {
			return ErrMaxRetriesReached
		}

		waitDuration, ok := options.Strategy.Next()
		if !ok {
			return ErrMaxRetriesReached
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return ErrTimeout
			}
			return ErrCanceled
		case <-time.After(waitDuration):
		}
	}
}

// FixedStrategy waits for a fixed duration between attempts
type FixedStrategy struct {
	duration time.Duration
}

// NewFixedStrategy creates a new fixed wait strategy
func NewFixedStrategy(duration time.Duration) *FixedStrategy {
	return &FixedStrategy{duration: duration}
}

// Next returns the next wait duration
func (s *FixedStrategy) Next() (time.Duration, bool) {
	return s.duration, true
}

// Reset resets the strategy
func (s *FixedStrategy) Reset() {}

// ExponentialBackoffStrategy doubles the wait between attempts up to a cap
type ExponentialBackoffStrategy struct {
	initial    time.Duration
	multiplier float64
	max        time.Duration
	attempt    int
}

// NewExponentialBackoffStrategy creates a new exponential backoff strategy
func NewExponentialBackoffStrategy(initial time.Duration, multiplier float64, max time.Duration) *ExponentialBackoffStrategy {
	return &ExponentialBackoffStrategy{
		initial:    initial,
		multiplier: multiplier,
		max:        max,
	}
}

// Next returns the next wait duration
func (s *ExponentialBackoffStrategy) Next() (time.Duration, bool) {
	duration := time.Duration(float64(s.initial) * math.Pow(s.multiplier, float64(s.attempt)))
	if s.max > 0 && duration > s.max {
		duration = s.max
	}
	s.attempt++
	return duration, true
}

// Reset resets the strategy
func (s *ExponentialBackoffStrategy) Reset() {
	s.attempt = 0
}

// mergeOptions merges provided options with defaults
func mergeOptions(opts ...*Options) *Options {
	if len(opts) == 0 {
		return DefaultOptions()
	}
	return opts[0]
}
