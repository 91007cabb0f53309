package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errService = errors.New("service error")

func ok() error      { return nil }
func failing() error { return errService }

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg Config) (*breaker, *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New(cfg).(*breaker)
	b.now = clk.now
	return b, clk
}

func TestBreaker_Call(t *testing.T) {
	t.Parallel()
	cfg := Config{Window: 10, Cooldown: time.Second, Threshold: 0.3, Recovery: 2}

	tests := []struct {
		name      string
		run       func(t *testing.T, b *breaker, clk *clock)
		wantState State
	}{
		{
			name: "successes keep it closed",
			run: func(t *testing.T, b *breaker, _ *clock) {
				for i := 0; i < 50; i++ {
					require.NoError(t, b.Call(ok))
				}
			},
			wantState: Closed,
		},
		{
			name: "failures below threshold keep it closed",
			run: func(t *testing.T, b *breaker, _ *clock) {
				require.ErrorIs(t, b.Call(failing), errService)
				require.ErrorIs(t, b.Call(failing), errService)
			},
			wantState: Closed,
		},
		{
			name: "threshold opens and rejects",
			run: func(t *testing.T, b *breaker, _ *clock) {
				for i := 0; i < 3; i++ {
					require.ErrorIs(t, b.Call(failing), errService)
				}
				called := false
				err := b.Call(func() error { called = true; return nil })
				require.ErrorIs(t, err, ErrOpen)
				require.False(t, called)
			},
			wantState: Open,
		},
		{
			name: "recovers after cooldown",
			run: func(t *testing.T, b *breaker, clk *clock) {
				for i := 0; i < 3; i++ {
					_ = b.Call(failing)
				}
				clk.advance(2 * time.Second)
				require.NoError(t, b.Call(ok))
				require.Equal(t, HalfOpen, b.State())
				require.NoError(t, b.Call(ok))
			},
			wantState: Closed,
		},
		{
			name: "half-open failure reopens",
			run: func(t *testing.T, b *breaker, clk *clock) {
				for i := 0; i < 3; i++ {
					_ = b.Call(failing)
				}
				clk.advance(2 * time.Second)
				require.ErrorIs(t, b.Call(failing), errService)
				require.ErrorIs(t, b.Call(ok), ErrOpen)
			},
			wantState: Open,
		},
		{
			name: "old failures roll out of the window",
			run: func(t *testing.T, b *breaker, _ *clock) {
				_ = b.Call(failing)
				_ = b.Call(failing)
				for i := 0; i < 10; i++ {
					require.NoError(t, b.Call(ok))
				}
				_ = b.Call(failing)
				_ = b.Call(failing)
			},
			wantState: Closed,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, clk := newTestBreaker(cfg)
			tt.run(t, b, clk)
			require.Equal(t, tt.wantState, b.State())
		})
	}
}

func TestBreaker_Reset(t *testing.T) {
	b, _ := newTestBreaker(Config{Window: 2, Cooldown: time.Hour, Threshold: 0.5, Recovery: 1})
	_ = b.Call(failing)
	require.Equal(t, Open, b.State())
	b.Reset()
	require.Equal(t, Closed, b.State())
	require.NoError(t, b.Call(ok))
}
