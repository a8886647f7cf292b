package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSpacerFirstCallDoesNotWait(t *testing.T) {
	clock := NewFakeClock(epoch)
	s := NewSpacer(clock, time.Second)

	require.NoError(t, s.Wait(context.Background(), "steam"))
	assert.Empty(t, clock.Sleeps())
}

func TestSpacerSleepsRemainder(t *testing.T) {
	clock := NewFakeClock(epoch)
	s := NewSpacer(clock, time.Second)

	s.Mark("steam")
	clock.Advance(300 * time.Millisecond)

	require.NoError(t, s.Wait(context.Background(), "steam"))
	assert.Equal(t, []time.Duration{700 * time.Millisecond}, clock.Sleeps())
}

func TestSpacerNoWaitAfterInterval(t *testing.T) {
	clock := NewFakeClock(epoch)
	s := NewSpacer(clock, time.Second)

	s.Mark("steam")
	clock.Advance(2 * time.Second)

	require.NoError(t, s.Wait(context.Background(), "steam"))
	assert.Empty(t, clock.Sleeps())
}

func TestSpacerServicesAreIndependent(t *testing.T) {
	clock := NewFakeClock(epoch)
	s := NewSpacer(clock, time.Second)
	s.SetInterval("opendota", 5*time.Second)

	s.Mark("steam")
	require.NoError(t, s.Wait(context.Background(), "opendota"))
	assert.Empty(t, clock.Sleeps())

	s.Mark("opendota")
	require.NoError(t, s.Wait(context.Background(), "opendota"))
	assert.Equal(t, []time.Duration{5 * time.Second}, clock.Sleeps())
	assert.Equal(t, time.Second, s.Interval("steam"))
}

func TestSpacerNCallsTakeAtLeastNMinusOneIntervals(t *testing.T) {
	const (
		calls    = 6
		interval = 20 * time.Millisecond
		callTime = 3 * time.Millisecond
	)
	s := NewSpacer(SystemClock{}, interval)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < calls; i++ {
		require.NoError(t, s.Wait(ctx, "steam"))
		time.Sleep(callTime)
		s.Mark("steam")
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, (calls-1)*interval)
}

func TestSpacerWaitHonoursContext(t *testing.T) {
	s := NewSpacer(SystemClock{}, time.Hour)
	s.Mark("steam")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx, "steam"), context.Canceled)
}

func TestSpacerReset(t *testing.T) {
	clock := NewFakeClock(epoch)
	s := NewSpacer(clock, time.Second)
	s.Mark("steam")

	s.Reset()
	_, ok := s.LastCall("steam")
	assert.False(t, ok)
}
