package client

import (
	"context"

	"github.com/jonesrussell/north-cloud/constructorio/session"
)

// ClientID returns the persistent identity, generating it on first use.
func (c *Client) ClientID(ctx context.Context) (string, error) {
	return c.session.ClientID(ctx)
}

// SessionID returns the current session id. A read after more than thirty
// minutes of inactivity starts a new session and reports it.
func (c *Client) SessionID(ctx context.Context) (int, error) {
	return c.session.AdvanceSessionIfExpired(ctx, c.sessionStarted)
}

// ResetSession sets the session id to value, or 1 when value is not positive.
func (c *Client) ResetSession(ctx context.Context, value int) (int, error) {
	return c.session.ResetSession(ctx, value)
}

// ClearSession forgets the identity, session and experiment state.
func (c *Client) ClearSession(ctx context.Context) error {
	return c.session.Clear(ctx)
}

// SetUserID sets the user id sent with every request. Empty clears it.
func (c *Client) SetUserID(userID string) {
	c.session.SetUserID(userID)
}

// UserID returns the current user id.
func (c *Client) UserID() string {
	return c.session.UserID()
}

// SetSegments replaces the user segments sent with every request.
func (c *Client) SetSegments(segments ...string) {
	c.session.SetSegments(segments)
}

// Segments returns the current user segments.
func (c *Client) Segments() []string {
	return c.session.Segments()
}

// SetTestCells replaces the experiment assignments. None clears them.
func (c *Client) SetTestCells(ctx context.Context, cells ...session.TestCell) error {
	return c.session.SetTestCells(ctx, cells)
}

// TestCells returns the experiment assignments.
func (c *Client) TestCells(ctx context.Context) ([]session.TestCell, error) {
	return c.session.TestCells(ctx)
}
