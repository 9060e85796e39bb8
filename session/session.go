// Package session owns the client's identity and session state: a persistent
// client id, a rotating session id, test cells, segments and the user id.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/constructorio/logger"
	"github.com/jonesrussell/north-cloud/constructorio/store"
)

// Storage keys.
const (
	KeyClientID   = "id"
	KeySessionID  = "session_id"
	KeyLastAccess = "last_session_access"
	KeyTestCells  = "test_cells"
)

// Timeout is the inactivity window after which a new session begins.
const Timeout = 30 * time.Minute

const firstSessionID = 1

// Manager reads and mutates session state. Session id increments are
// serialized so concurrent requests never double-increment.
type Manager struct {
	store *store.Store
	log   logger.Logger
	now   func() time.Time
	newID func() string

	mu sync.Mutex // guards the session read-modify-write and client id creation

	attrMu   sync.RWMutex
	userID   string
	segments []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithIDGenerator overrides the client id generator.
func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a Manager over st.
func NewManager(st *store.Store, opts ...Option) *Manager {
	m := &Manager{
		store: st,
		log:   logger.NewNop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ClientID returns the persisted client id, generating and storing one on first use.
func (m *Manager) ClientID(ctx context.Context) (string, error) {
	ctx = context.WithoutCancel(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.store.GetString(ctx, KeyClientID)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("read client id: %w", err)
	}

	id = m.newID()
	if err := m.store.SetString(ctx, KeyClientID, id); err != nil {
		return "", fmt.Errorf("persist client id: %w", err)
	}
	m.log.Debug("Generated client id", logger.String("client_id", id))
	return id, nil
}

// AdvanceSessionIfExpired returns the current session id. A missing session
// starts at 1. When more than Timeout has passed since the last access the id
// is incremented and onIncrement, if non-nil, receives the new id after the
// state is persisted. Every call records the access time.
//
// The mutation is neither rolled back nor interrupted by cancellation of ctx.
func (m *Manager) AdvanceSessionIfExpired(ctx context.Context, onIncrement func(sessionID string)) (int, error) {
	id, incremented, err := m.advance(context.WithoutCancel(ctx))
	if err != nil {
		return 0, err
	}
	if incremented && onIncrement != nil {
		onIncrement(strconv.Itoa(id))
	}
	return id, nil
}

func (m *Manager) advance(ctx context.Context) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	id, err := m.store.GetInt(ctx, KeySessionID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := m.writeSession(ctx, firstSessionID, now); err != nil {
			return 0, false, err
		}
		return firstSessionID, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("read session id: %w", err)
	}

	incremented := false
	last, err := m.store.GetLong(ctx, KeyLastAccess)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, false, fmt.Errorf("read last session access: %w", err)
	}
	if err == nil && now.Sub(time.UnixMilli(last)) > Timeout {
		id++
		incremented = true
	}

	if err := m.writeSession(ctx, id, now); err != nil {
		return 0, false, err
	}
	if incremented {
		m.log.Debug("Session expired, started new session", logger.SessionID(id))
	}
	return id, incremented, nil
}

func (m *Manager) writeSession(ctx context.Context, id int, at time.Time) error {
	if err := m.store.SetInt(ctx, KeySessionID, id); err != nil {
		return fmt.Errorf("persist session id: %w", err)
	}
	if err := m.store.SetLong(ctx, KeyLastAccess, at.UnixMilli()); err != nil {
		return fmt.Errorf("persist last session access: %w", err)
	}
	return nil
}

// ResetSession forces the session id to value, or to 1 when value <= 0, and returns it.
func (m *Manager) ResetSession(ctx context.Context, value int) (int, error) {
	if value <= 0 {
		value = firstSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.writeSession(context.WithoutCancel(ctx), value, m.now()); err != nil {
		return 0, err
	}
	return value, nil
}

// Clear wipes every persisted value. The next read generates a new client id
// and starts again at session 1.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("clear session state: %w", err)
	}
	return nil
}

// SetTestCells persists the client's experiment assignments.
func (m *Manager) SetTestCells(ctx context.Context, cells []TestCell) error {
	if len(cells) == 0 {
		return m.store.Remove(ctx, KeyTestCells)
	}
	if err := m.store.SetString(ctx, KeyTestCells, EncodeTestCells(cells)); err != nil {
		return fmt.Errorf("persist test cells: %w", err)
	}
	return nil
}

// TestCells returns the stored experiment assignments in the order they were set.
func (m *Manager) TestCells(ctx context.Context) ([]TestCell, error) {
	raw, err := m.store.GetString(ctx, KeyTestCells)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read test cells: %w", err)
	}
	return DecodeTestCells(raw)
}

// TestCellParams returns the test cells keyed as they are sent, ef-<key>.
func (m *Manager) TestCellParams(ctx context.Context) ([]TestCell, error) {
	cells, err := m.TestCells(ctx)
	if err != nil {
		return nil, err
	}
	params := make([]TestCell, len(cells))
	for i, c := range cells {
		params[i] = TestCell{Key: TestCellPrefix + c.Key, Value: c.Value}
	}
	return params, nil
}

// SetUserID sets the logged-in user id. Empty clears it.
func (m *Manager) SetUserID(userID string) {
	m.attrMu.Lock()
	defer m.attrMu.Unlock()
	m.userID = userID
}

// UserID returns the logged-in user id, or "".
func (m *Manager) UserID() string {
	m.attrMu.RLock()
	defer m.attrMu.RUnlock()
	return m.userID
}

// SetSegments replaces the client's segments.
func (m *Manager) SetSegments(segments []string) {
	m.attrMu.Lock()
	defer m.attrMu.Unlock()
	m.segments = append([]string(nil), segments...)
}

// Segments returns a copy of the client's segments.
func (m *Manager) Segments() []string {
	m.attrMu.RLock()
	defer m.attrMu.RUnlock()
	return append([]string(nil), m.segments...)
}
