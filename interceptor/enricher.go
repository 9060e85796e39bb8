// Package interceptor adds identity and session parameters to every outbound
// request and strips personal data from event requests.
package interceptor

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
	"github.com/jonesrussell/north-cloud/constructorio/logger"
	"github.com/jonesrussell/north-cloud/constructorio/query"
	"github.com/jonesrussell/north-cloud/constructorio/session"
)

// Common parameter names.
const (
	ParamAPIKey        = "key"
	ParamClientID      = "i"
	ParamUserID        = "ui"
	ParamSessionID     = "s"
	ParamSegment       = "us"
	ParamClientVersion = "c"
	ParamTimestamp     = "_dt"
)

// Config holds the static values added to every request.
type Config struct {
	APIKey        string
	ClientVersion string
	// Port is applied to request URLs that carry no explicit port. Zero and
	// the scheme default leave the URL unchanged.
	Port int
}

// Identity is the client state sent with a request.
type Identity struct {
	APIKey        string
	ClientVersion string
	ClientID      string
	SessionID     int
	UserID        string
	Segments      []string
	TestCells     []session.TestCell
}

// Enricher is an http.RoundTripper that appends the common parameters.
type Enricher struct {
	next           http.RoundTripper
	session        *session.Manager
	cfg            Config
	now            func() time.Time
	onSessionStart func(sessionID string)
	log            logger.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Enricher) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Enricher) { e.log = log }
}

// WithSessionStart registers fn to run whenever reading the session starts a new one.
func WithSessionStart(fn func(sessionID string)) Option {
	return func(e *Enricher) { e.onSessionStart = fn }
}

// New returns an Enricher sending through next, or http.DefaultTransport when next is nil.
func New(next http.RoundTripper, sess *session.Manager, cfg Config, opts ...Option) *Enricher {
	if next == nil {
		next = http.DefaultTransport
	}
	e := &Enricher{
		next:    next,
		session: sess,
		cfg:     cfg,
		now:     time.Now,
		log:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot returns the identity for one request, advancing the session if it expired.
func (e *Enricher) Snapshot(ctx context.Context) (Identity, error) {
	clientID, err := e.session.ClientID(ctx)
	if err != nil {
		return Identity{}, cioerrors.NewBuild("resolve client id", err)
	}
	sessionID, err := e.session.AdvanceSessionIfExpired(ctx, e.onSessionStart)
	if err != nil {
		return Identity{}, cioerrors.NewBuild("resolve session id", err)
	}
	cells, err := e.session.TestCells(ctx)
	if err != nil {
		return Identity{}, cioerrors.NewBuild("resolve test cells", err)
	}
	return Identity{
		APIKey:        e.cfg.APIKey,
		ClientVersion: e.cfg.ClientVersion,
		ClientID:      clientID,
		SessionID:     sessionID,
		UserID:        e.session.UserID(),
		Segments:      e.session.Segments(),
		TestCells:     cells,
	}, nil
}

// RoundTrip implements http.RoundTripper.
func (e *Enricher) RoundTrip(req *http.Request) (*http.Response, error) {
	enriched, err := e.Enrich(req)
	if err != nil {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}
	return e.next.RoundTrip(enriched)
}

// Enrich returns a copy of req with the common parameters appended. Event
// endpoints have every existing query value redacted first. Headers, method
// and body are left untouched.
func (e *Enricher) Enrich(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	path := out.URL.EscapedPath()

	existing := out.URL.RawQuery
	if IsBehavioralPath(path) && existing != "" {
		redacted, err := redactQuery(existing)
		if err != nil {
			return nil, err
		}
		if redacted != existing {
			e.log.Debug("Redacted personal data from event request", logger.String("path", path))
		}
		existing = redacted
	}

	e.applyPort(out)

	id, err := e.Snapshot(out.Context())
	if err != nil {
		return nil, err
	}
	common := CommonParams(id)
	if SendsTimestamp(path) {
		common.Add(ParamTimestamp, strconv.FormatInt(e.now().UnixMilli(), 10))
	}
	encoded, err := common.Encode()
	if err != nil {
		return nil, err
	}

	if existing != "" {
		out.URL.RawQuery = existing + "&" + encoded
	} else {
		out.URL.RawQuery = encoded
	}
	return out, nil
}

// CommonParams returns the identity parameters in wire order.
func CommonParams(id Identity) query.Params {
	var p query.Params
	p.Add(ParamAPIKey, id.APIKey)
	p.Add(ParamClientID, id.ClientID)
	if id.UserID != "" {
		p.Add(ParamUserID, id.UserID)
	}
	p.Add(ParamSessionID, strconv.Itoa(id.SessionID))
	for _, cell := range id.TestCells {
		p.Add(session.TestCellPrefix+cell.Key, cell.Value)
	}
	p.AddAll(ParamSegment, id.Segments)
	p.Add(ParamClientVersion, id.ClientVersion)
	return p
}

func redactQuery(raw string) (string, error) {
	parsed, err := query.ParseQuery(raw)
	if err != nil {
		return "", cioerrors.NewBuild("parse event query", err)
	}
	var rebuilt query.Params
	for _, p := range parsed.All() {
		rebuilt.Add(p.Key, Redact(p.Value))
	}
	return rebuilt.Encode()
}

func (e *Enricher) applyPort(req *http.Request) {
	if e.cfg.Port == 0 || req.URL.Port() != "" || isDefaultPort(req.URL.Scheme, e.cfg.Port) {
		return
	}
	req.URL.Host = net.JoinHostPort(req.URL.Hostname(), strconv.Itoa(e.cfg.Port))
	req.Host = ""
}

func isDefaultPort(scheme string, port int) bool {
	return (scheme == "https" && port == 443) || (scheme == "http" && port == 80)
}
