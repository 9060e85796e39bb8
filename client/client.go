// Package client is the entry point of the SDK. A Client owns the identity
// state, the enriched HTTP client and the tracking dispatcher; construct one
// per application and share it.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jonesrussell/north-cloud/constructorio/circuitbreaker"
	"github.com/jonesrussell/north-cloud/constructorio/config"
	"github.com/jonesrussell/north-cloud/constructorio/httpclient"
	"github.com/jonesrussell/north-cloud/constructorio/interceptor"
	"github.com/jonesrussell/north-cloud/constructorio/logger"
	"github.com/jonesrussell/north-cloud/constructorio/metrics"
	"github.com/jonesrussell/north-cloud/constructorio/request"
	"github.com/jonesrussell/north-cloud/constructorio/retry"
	"github.com/jonesrussell/north-cloud/constructorio/session"
	"github.com/jonesrussell/north-cloud/constructorio/store"
	"github.com/jonesrussell/north-cloud/constructorio/tracking"
)

// Client talks to the search, recommendation, quiz and tracking endpoints.
type Client struct {
	cfg        config.Config
	defaults   request.Defaults
	base       *url.URL
	quizBase   *url.URL
	http       *http.Client
	session    *session.Manager
	enricher   *interceptor.Enricher
	tracker    *tracking.Tracker
	dispatcher *tracking.Dispatcher
	metrics    *metrics.Collector
	store      *store.Store
	ownsStore  bool
	log        logger.Logger
}

type options struct {
	log        logger.Logger
	transport  http.RoundTripper
	metrics    *metrics.Collector
	now        func() time.Time
	newID      func() string
	onComplete func(event string, err error)
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithHTTPTransport replaces the base transport under the enrichment layer.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithMetrics records request and tracking metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithClock overrides the clock used for sessions and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides client id generation.
func WithIDGenerator(gen func() string) Option {
	return func(o *options) { o.newID = gen }
}

// WithTrackingHook is called after every fire-and-forget event with its outcome.
func WithTrackingHook(fn func(event string, err error)) Option {
	return func(o *options) { o.onComplete = fn }
}

// New creates a Client. A nil store keeps identity state in memory for the
// life of the process. cfg is copied and its unset fields defaulted.
func New(cfg *config.Config, st *store.Store, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("client: config is required")
	}
	conf := *cfg
	config.SetDefaults(&conf)
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	o := options{log: logger.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	base, err := conf.BaseURL()
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	quizBase, err := conf.QuizBaseURL()
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	c := &Client{
		cfg: conf,
		defaults: request.Defaults{
			Section:            conf.DefaultItemSection,
			AutocompleteCounts: conf.AutocompleteCounts,
		},
		base:     base,
		quizBase: quizBase,
		metrics:  o.metrics,
		store:    st,
		log:      o.log,
	}
	if c.store == nil {
		c.store = store.NewMemory()
		c.ownsStore = true
	}

	if err := c.initSession(o); err != nil {
		return nil, err
	}
	c.initTransport(o)
	c.initTracking(o)

	c.log.Debug("Client created",
		logger.URL("service", base),
		logger.String("client_version", conf.ClientVersion),
	)
	return c, nil
}

func (c *Client) initSession(o options) error {
	sessOpts := []session.Option{session.WithClock(o.now), session.WithLogger(c.log)}
	if o.newID != nil {
		sessOpts = append(sessOpts, session.WithIDGenerator(o.newID))
	}
	c.session = session.NewManager(c.store, sessOpts...)
	c.session.SetUserID(c.cfg.UserID)
	c.session.SetSegments(c.cfg.Segments)

	if len(c.cfg.TestCells) == 0 {
		return nil
	}
	cells := make([]session.TestCell, len(c.cfg.TestCells))
	for i, cell := range c.cfg.TestCells {
		cells[i] = session.TestCell{Key: cell.Key, Value: cell.Value}
	}
	if err := c.session.SetTestCells(context.Background(), cells); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	return nil
}

func (c *Client) initTransport(o options) {
	icfg := interceptor.Config{
		APIKey:        c.cfg.APIKey,
		ClientVersion: c.cfg.ClientVersion,
		Port:          c.cfg.ServicePort,
	}
	enrich := func(next http.RoundTripper) http.RoundTripper {
		c.enricher = interceptor.New(next, c.session, icfg,
			interceptor.WithClock(o.now),
			interceptor.WithLogger(c.log),
			interceptor.WithSessionStart(c.sessionStarted),
		)
		return c.enricher
	}
	c.http = httpclient.NewClient(
		httpclient.ClientConfig{Timeout: c.cfg.HTTP.Timeout},
		o.transport,
		enrich,
		c.metrics.Transport,
	)
}

func (c *Client) initTracking(o options) {
	c.tracker = tracking.NewTracker(c.http, c.base, c.enricher,
		tracking.WithDefaultSection(c.cfg.DefaultItemSection),
		tracking.WithTrackerClock(o.now),
		tracking.WithTrackerLogger(c.log),
	)

	breaker := tracking.NewBreaker(circuitbreaker.Config{
		FailureThreshold: c.cfg.Tracking.FailureThreshold,
		Timeout:          c.cfg.Tracking.BreakerTimeout,
		Now:              o.now,
		OnStateChange: func(from, to circuitbreaker.State) {
			c.log.Info("Tracking circuit changed state",
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	}, c.metrics)

	rc := retry.DefaultConfig()
	rc.MaxAttempts = c.cfg.Tracking.MaxAttempts
	c.dispatcher = tracking.NewDispatcher(
		tracking.WithRetry(rc),
		tracking.WithBreaker(breaker),
		tracking.WithMetrics(c.metrics),
		tracking.WithDispatcherLogger(c.log),
		tracking.WithOnComplete(o.onComplete),
	)
}

// sessionStarted runs whenever reading the session id starts a new session.
func (c *Client) sessionStarted(sessionID string) {
	c.metrics.ObserveSessionStart()
	c.log.Debug("Session started", logger.String(logger.KeySessionID, sessionID))
	c.dispatcher.Fire(context.Background(), tracking.EventSessionStart, c.tracker.SessionStart)
}

// Tracker exposes the synchronous tracking tier.
func (c *Client) Tracker() *tracking.Tracker {
	return c.tracker
}

// Metrics returns the collector given to WithMetrics, or nil.
func (c *Client) Metrics() *metrics.Collector {
	return c.metrics
}

// HTTPClient returns the enriched client, for calling endpoints the SDK does
// not wrap.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// WaitForTracking blocks until every event sent so far has finished.
func (c *Client) WaitForTracking(ctx context.Context) error {
	return c.dispatcher.Wait(ctx)
}

// Close drains pending tracking events. The store is closed only when the
// client created it.
func (c *Client) Close(ctx context.Context) error {
	err := c.dispatcher.Close(ctx)
	c.http.CloseIdleConnections()
	if c.ownsStore {
		err = errors.Join(err, c.store.Close())
	}
	return err
}
