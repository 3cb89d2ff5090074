package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/pkordes/map-collection/internal/domain"
	"github.com/pkordes/map-collection/internal/metrics"
)

// BreakerConfig tunes the circuit breaker around the generator.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// Timeout is how long the breaker stays open before a trial request.
	Timeout time.Duration
	// RequestTimeout bounds a single generation call.
	RequestTimeout time.Duration
}

// DefaultBreakerConfig returns the production breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 3,
		Timeout:          30 * time.Second,
		RequestTimeout:   20 * time.Second,
	}
}

const breakerName = "assistant"

// Client is the entry point used by the service layer. A Client built with a
// nil Generator is disabled and answers every call with domain.ErrUnavailable.
type Client struct {
	gen            Generator
	cb             *gobreaker.CircuitBreaker[string]
	requestTimeout time.Duration
}

// NewClient wraps gen in a circuit breaker.
func NewClient(gen Generator, cfg BreakerConfig) *Client {
	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	}
	return &Client{
		gen:            gen,
		cb:             gobreaker.NewCircuitBreaker[string](settings),
		requestTimeout: cfg.RequestTimeout,
	}
}

// Enabled reports whether a generator is configured.
func (c *Client) Enabled() bool {
	return c.gen != nil
}

// Ask runs prompt through the generator. Every failure (disabled, breaker
// open, upstream error) is reported as domain.ErrUnavailable.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		metrics.RecordAssistant("disabled", 0)
		return "", fmt.Errorf("%w: assistant is not configured", domain.ErrUnavailable)
	}

	start := time.Now()
	answer, err := c.cb.Execute(func() (string, error) {
		callCtx := ctx
		if c.requestTimeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, c.requestTimeout)
			defer cancel()
		}
		return c.gen.Generate(callCtx, prompt)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordAssistant("rejected", 0)
			return "", fmt.Errorf("%w: assistant temporarily unavailable", domain.ErrUnavailable)
		}
		metrics.RecordAssistant("error", time.Since(start))
		return "", fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	}

	metrics.RecordAssistant("ok", time.Since(start))
	return answer, nil
}

// State returns the breaker state name, for health output.
func (c *Client) State() string {
	if !c.Enabled() {
		return "disabled"
	}
	return c.cb.State().String()
}
