package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"codeberg.org/snonux/shabda/internal/prompt"
)

// DefaultTimeout bounds a single completion call
const DefaultTimeout = 60 * time.Second

// GuardConfig configures a Guard. Zero values disable the limiter and breaker.
type GuardConfig struct {
	Timeout           time.Duration
	RequestsPerMinute int
	MaxFailures       int           // consecutive failures that open the breaker
	BreakerTimeout    time.Duration // how long the breaker stays open
}

// Guard applies a rate limit, a circuit breaker and a timeout to every call
type Guard struct {
	next    Completer
	timeout time.Duration
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewGuard wraps next
func NewGuard(next Completer, cfg GuardConfig, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	g := &Guard{
		next:    next,
		timeout: cfg.Timeout,
		logger:  logger.Named("guard"),
	}

	if cfg.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}

	if cfg.MaxFailures > 0 {
		maxFailures := uint32(cfg.MaxFailures)
		g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    next.Name(),
			Timeout: cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				// the caller went away; that says nothing about the provider
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				g.logger.Warn("circuit breaker state changed",
					zap.String("provider", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}

	return g
}

// Name returns the wrapped provider name
func (g *Guard) Name() string {
	return g.next.Name()
}

// Complete runs the wrapped call under the limiter, breaker and timeout
func (g *Guard) Complete(ctx context.Context, model string, msgs []prompt.Message) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", upstream(g.Name(), model, fmt.Errorf("rate limit: %w", err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.call(ctx, model, msgs)
	if err != nil {
		g.logger.Warn("completion failed",
			zap.String("provider", g.Name()),
			zap.String("model", model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", upstream(g.Name(), model, err)
	}

	g.logger.Debug("completion done",
		zap.String("provider", g.Name()),
		zap.String("model", model),
		zap.Duration("elapsed", time.Since(start)))
	return text, nil
}

func (g *Guard) call(ctx context.Context, model string, msgs []prompt.Message) (string, error) {
	if g.breaker == nil {
		return g.next.Complete(ctx, model, msgs)
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Complete(ctx, model, msgs)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
