package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/constructorio/circuitbreaker"
	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
	"github.com/jonesrussell/north-cloud/constructorio/logger"
	"github.com/jonesrussell/north-cloud/constructorio/metrics"
	"github.com/jonesrussell/north-cloud/constructorio/retry"
)

const serverErrorFloor = 500

// ErrDispatcherClosed is returned for events submitted after Close.
var ErrDispatcherClosed = errors.New("tracking dispatcher closed")

// SendFunc sends one event.
type SendFunc func(ctx context.Context) error

// Dispatcher runs event sends in the background. Sends are detached from the
// caller's cancellation, retried on transport failures and guarded by a
// circuit breaker so an unreachable service is not hammered.
type Dispatcher struct {
	retry      retry.Config
	breaker    *circuitbreaker.Breaker
	metrics    *metrics.Collector
	log        logger.Logger
	onComplete func(event string, err error)

	mu     sync.RWMutex
	wg     sync.WaitGroup
	closed chan struct{}
	once   sync.Once
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRetry sets the retry policy. IsRetryable is always narrowed so that an
// open circuit ends the attempts.
func WithRetry(cfg retry.Config) DispatcherOption {
	return func(d *Dispatcher) { d.retry = cfg }
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuitbreaker.Breaker) DispatcherOption {
	return func(d *Dispatcher) { d.breaker = b }
}

// WithMetrics records event outcomes on c.
func WithMetrics(c *metrics.Collector) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = c }
}

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(log logger.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = log }
}

// WithOnComplete registers a hook called after every event with its final error.
func WithOnComplete(fn func(event string, err error)) DispatcherOption {
	return func(d *Dispatcher) { d.onComplete = fn }
}

// NewDispatcher creates a running dispatcher.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		retry:  retry.DefaultConfig(),
		log:    logger.NewNop(),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.breaker == nil {
		d.breaker = NewBreaker(circuitbreaker.Config{}, d.metrics)
	}

	base := d.retry.IsRetryable
	if base == nil {
		base = cioerrors.IsNetworkError
	}
	d.retry.IsRetryable = func(err error) bool {
		return !errors.Is(err, circuitbreaker.ErrCircuitOpen) && base(err)
	}
	return d
}

// NewBreaker returns a breaker that trips on transport failures and server
// errors, reporting transitions to c.
func NewBreaker(cfg circuitbreaker.Config, c *metrics.Collector) *circuitbreaker.Breaker {
	if cfg.IsFailure == nil {
		cfg.IsFailure = IsServiceFailure
	}
	next := cfg.OnStateChange
	cfg.OnStateChange = func(from, to circuitbreaker.State) {
		c.ObserveBreakerState(to.String())
		if next != nil {
			next(from, to)
		}
	}
	return circuitbreaker.New(cfg)
}

// IsServiceFailure reports whether err counts against the service's health.
func IsServiceFailure(err error) bool {
	if cioerrors.IsNetworkError(err) {
		return true
	}
	code, ok := cioerrors.StatusCode(err)
	return ok && code >= serverErrorFloor
}

// Go sends the event in the background and returns a channel that receives
// its final error, then closes.
func (d *Dispatcher) Go(ctx context.Context, event string, send SendFunc) <-chan error {
	done := make(chan error, 1)

	d.mu.RLock()
	if d.isClosed() {
		d.mu.RUnlock()
		done <- ErrDispatcherClosed
		close(done)
		return done
	}
	d.wg.Add(1)
	d.mu.RUnlock()

	detached := context.WithoutCancel(ctx)
	d.metrics.TrackingStarted()
	go func() {
		defer d.wg.Done()

		err := d.run(detached, event, send)
		d.metrics.TrackingFinished()
		d.record(event, err)
		done <- err
		close(done)
	}()
	return done
}

// Fire sends the event in the background. Failures are logged and dropped.
func (d *Dispatcher) Fire(ctx context.Context, event string, send SendFunc) {
	if d.isClosed() {
		d.log.Warn("Tracking event dropped after close", logger.Event(event))
		return
	}
	_ = d.Go(ctx, event, send)
}

// Wait blocks until every submitted event has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	idle := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(idle)
	}()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for in-flight ones. It is safe to
// call multiple times.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.once.Do(func() {
		d.mu.Lock()
		close(d.closed)
		d.mu.Unlock()
	})
	return d.Wait(ctx)
}

func (d *Dispatcher) run(ctx context.Context, event string, send SendFunc) error {
	cfg := d.retry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		d.log.Debug("Retrying tracking event",
			logger.Event(event),
			logger.Attempt(attempt),
			logger.Duration("delay", delay),
			logger.Error(err),
		)
	}
	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		return d.breaker.Execute(ctx, send)
	})
}

func (d *Dispatcher) record(event string, err error) {
	switch {
	case err == nil:
		d.metrics.ObserveTracking(event, metrics.OutcomeSuccess)
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		d.metrics.ObserveTracking(event, metrics.OutcomeRejected)
	default:
		d.metrics.ObserveTracking(event, metrics.OutcomeFailure)
	}

	if err != nil {
		d.log.Warn("Tracking event failed",
			logger.Event(event),
			logger.String("kind", string(cioerrors.KindOf(err))),
			logger.Error(err),
		)
	}
	if d.onComplete != nil {
		d.onComplete(event, err)
	}
}

func (d *Dispatcher) isClosed() bool {
	select {
	case <-d.closed:
		return true
	default:
		return false
	}
}
