package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
)

// recordSleep replaces the real wait so tests do not block
func recordSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	var delays []time.Duration
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     Cooldown(30 * time.Second),
		Sleep:       recordSleep(&delays),
		Context:     context.Background(),
	}

	require.NoError(t, Do(op, cfg))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{30 * time.Second, 30 * time.Second}, delays)
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	var delays []time.Duration
	lastErr := errs.New(errs.ErrorTypeDecode, "", "invalid character")
	op := func() error {
		attempts++
		return lastErr
	}

	cfg := Bounded(context.Background(), 20, time.Second, errs.StageFetch, logger.NewTestLogger())
	cfg.Sleep = recordSleep(&delays)

	err := Do(op, cfg)
	require.Error(t, err)
	assert.Equal(t, 20, attempts)
	assert.Len(t, delays, 19, "no cooldown after the final attempt")
	assert.ErrorIs(t, err, errs.ErrAttemptsExceeded)
	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, errs.ErrorTypeAttemptsExceeded, errs.TypeOf(err))
	assert.Equal(t, errs.StageFetch, errs.StageOf(err))
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	var delays []time.Duration
	domainErr := errs.New(errs.ErrorTypeDomain, errs.StageLookup, "Match ID not found")

	cfg := Bounded(context.Background(), 5, time.Second, errs.StageLookup, nil)
	cfg.Sleep = recordSleep(&delays)

	err := Do(func() error {
		attempts++
		return domainErr
	}, cfg)

	assert.Equal(t, domainErr, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, delays)
}

func TestRetryForever(t *testing.T) {
	attempts := 0
	var delays []time.Duration

	cfg := &Config{
		MaxAttempts: Forever,
		Backoff:     Cooldown(30 * time.Second),
		Sleep:       recordSleep(&delays),
	}

	err := Do(func() error {
		attempts++
		if attempts < 50 {
			return errs.New(errs.ErrorTypeNetwork, "", "connection refused")
		}
		return nil
	}, cfg)

	require.NoError(t, err)
	assert.Equal(t, 50, attempts)
	assert.Len(t, delays, 49)
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     Cooldown(time.Hour),
		Context:     ctx,
	}

	err := Do(func() error {
		attempts++
		cancel()
		return errors.New("temporary error")
	}, cfg)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"network", errs.New(errs.ErrorTypeNetwork, "", ""), true},
		{"decode", errs.New(errs.ErrorTypeDecode, "", ""), true},
		{"status", errs.New(errs.ErrorTypeStatus, "", ""), true},
		{"domain", errs.New(errs.ErrorTypeDomain, "", ""), false},
		{"boundary", errs.New(errs.ErrorTypeBoundary, "", ""), false},
		{"unknown", errors.New("boom"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRetryIf(tt.err))
		})
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	var delays []time.Duration

	cfg := &Config{MaxAttempts: 3, Sleep: recordSleep(&delays)}
	result, err := DoWithResult(func() (int64, error) {
		attempts++
		if attempts < 2 {
			return 0, errors.New("temporary error")
		}
		return 7000, nil
	}, cfg)

	require.NoError(t, err)
	assert.Equal(t, int64(7000), result)
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))
	assert.NoError(t, Wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
}
