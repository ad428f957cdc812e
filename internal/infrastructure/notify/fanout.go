package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/poule-scoring/internal/domain/scoringevent"
	"github.com/riskibarqy/poule-scoring/internal/platform/logging"
	"github.com/riskibarqy/poule-scoring/internal/platform/resilience"
)

// Sink is one downstream consumer of scoring events.
type Sink struct {
	Name      string
	Publisher scoringevent.Publisher
}

type Config struct {
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

type guardedSink struct {
	name      string
	publisher scoringevent.Publisher
	breaker   *resilience.CircuitBreaker
}

// FanOut delivers every event to all sinks concurrently. Each sink has its own
// timeout and circuit breaker so a slow broker cannot stall the others.
type FanOut struct {
	sinks   []guardedSink
	timeout time.Duration
	logger  *logging.Logger
}

func NewFanOut(cfg Config, logger *logging.Logger, sinks ...Sink) *FanOut {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	guarded := make([]guardedSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink.Publisher == nil {
			continue
		}
		guarded = append(guarded, guardedSink{
			name:      sink.Name,
			publisher: sink.Publisher,
			breaker:   resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		})
	}

	return &FanOut{
		sinks:   guarded,
		timeout: timeout,
		logger:  logger.Named("notify"),
	}
}

func (f *FanOut) Len() int {
	return len(f.sinks)
}

func (f *FanOut) PublishStandings(ctx context.Context, event scoringevent.StandingsUpdated) error {
	return f.broadcast(ctx, "standings", func(ctx context.Context, p scoringevent.Publisher) error {
		return p.PublishStandings(ctx, event)
	})
}

func (f *FanOut) PublishPassCompleted(ctx context.Context, event scoringevent.PassCompleted) error {
	return f.broadcast(ctx, "pass_completed", func(ctx context.Context, p scoringevent.Publisher) error {
		return p.PublishPassCompleted(ctx, event)
	})
}

func (f *FanOut) broadcast(ctx context.Context, kind string, send func(context.Context, scoringevent.Publisher) error) error {
	if len(f.sinks) == 0 {
		return nil
	}

	p := pool.New().WithErrors()
	for _, sink := range f.sinks {
		p.Go(func() error {
			err := sink.breaker.Execute(func() error {
				callCtx, cancel := context.WithTimeout(ctx, f.timeout)
				defer cancel()
				return send(callCtx, sink.publisher)
			})
			if err != nil {
				f.logger.WarnContext(ctx, "scoring event delivery failed",
					"sink", sink.name,
					"event", kind,
					"circuit_state", sink.breaker.State(),
					"error", err,
				)
				return fmt.Errorf("sink %s: %w", sink.name, err)
			}
			return nil
		})
	}
	return p.Wait()
}
