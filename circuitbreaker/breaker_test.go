package circuitbreaker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/constructorio/circuitbreaker"
)

var errBoom = errors.New("boom")

func fail(context.Context) error    { return errBoom }
func succeed(context.Context) error { return nil }

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newBreaker(c *clock, transitions *[]string) *circuitbreaker.Breaker {
	return circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 2,
		Timeout:          time.Minute,
		Now:              c.Now,
		OnStateChange: func(from, to circuitbreaker.State) {
			*transitions = append(*transitions, from.String()+"->"+to.String())
		},
	})
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Unix(0, 0)}
	var transitions []string
	b := newBreaker(c, &transitions)

	assert.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, circuitbreaker.StateClosed, b.State())
	assert.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, circuitbreaker.StateOpen, b.State())

	called := false
	err := b.Execute(ctx, func(context.Context) error { called = true; return nil })
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Unix(0, 0)}
	var transitions []string
	b := newBreaker(c, &transitions)

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	c.now = c.now.Add(time.Minute)

	require.NoError(t, b.Execute(ctx, succeed))
	assert.Equal(t, circuitbreaker.StateClosed, b.State())
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Unix(0, 0)}
	var transitions []string
	b := newBreaker(c, &transitions)

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	c.now = c.now.Add(2 * time.Minute)

	assert.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, circuitbreaker.StateOpen, b.State())
	assert.ErrorIs(t, b.Execute(ctx, succeed), circuitbreaker.ErrCircuitOpen)
}

func TestBreaker_OnlyOneProbe(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Unix(0, 0)}
	var transitions []string
	b := newBreaker(c, &transitions)

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	c.now = c.now.Add(time.Minute)

	err := b.Execute(ctx, func(ctx context.Context) error {
		return b.Execute(ctx, succeed)
	})
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
}

func TestBreaker_IgnoresNonFailures(t *testing.T) {
	ctx := context.Background()
	b := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 1,
		IsFailure:        func(err error) bool { return !errors.Is(err, errBoom) },
	})

	assert.ErrorIs(t, b.Execute(ctx, fail), errBoom)
	assert.Equal(t, circuitbreaker.StateClosed, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Unix(0, 0)}
	var transitions []string
	b := newBreaker(c, &transitions)

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, fail)
	b.Reset()
	assert.Equal(t, circuitbreaker.StateClosed, b.State())
	assert.NoError(t, b.Execute(ctx, succeed))
}
