package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/ratelimit"
)

func newTestTransport(interval time.Duration) (*Transport, *ratelimit.FakeClock, *logger.TestLogger) {
	clock := ratelimit.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	log := logger.NewTestLogger()
	return New(ratelimit.NewSpacer(clock, interval), 30*time.Second, log), clock, log
}

// statusSequence serves the given statuses in order, then 200
func statusSequence(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&hits, 1))
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func get(client *resty.Client) Request {
	return func(ctx context.Context) (*resty.Response, error) {
		return client.R().SetContext(ctx).Get("/")
	}
}

func TestCallRetriesThrottlingForever(t *testing.T) {
	server, hits := statusSequence(t, 429, 503, 429, 503)
	tr, clock, log := newTestTransport(time.Second)
	client := NewHTTPClient(server.URL, 5*time.Second, log)

	resp, err := tr.Call(context.Background(), "steam", get(client))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, int32(5), atomic.LoadInt32(hits))
	assert.Equal(t, 5, tr.Calls("steam"))

	for _, d := range clock.Sleeps() {
		assert.Equal(t, 30*time.Second, d)
	}
	assert.Len(t, clock.Sleeps(), 4)
	assert.True(t, log.HasMessage("transient failure, waiting before retrying"))
}

func TestCallReturnsOtherStatuses(t *testing.T) {
	for _, status := range []int{400, 404, 500} {
		server, hits := statusSequence(t, status)
		tr, clock, log := newTestTransport(time.Second)
		client := NewHTTPClient(server.URL, 5*time.Second, log)

		resp, err := tr.Call(context.Background(), "steam", get(client))
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode())
		assert.Equal(t, int32(1), atomic.LoadInt32(hits))
		assert.Empty(t, clock.Sleeps())
	}
}

func TestCallRetriesConnectionFailures(t *testing.T) {
	server, _ := statusSequence(t)
	tr, clock, log := newTestTransport(time.Second)
	client := NewHTTPClient(server.URL, 5*time.Second, log)

	failures := 3
	resp, err := tr.Call(context.Background(), "steam", func(ctx context.Context) (*resty.Response, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("connection reset by peer")
		}
		return client.R().SetContext(ctx).Get("/")
	})

	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, 4, tr.Calls("steam"))
	assert.Equal(t, []time.Duration{30 * time.Second, 30 * time.Second, 30 * time.Second}, clock.Sleeps())
}

func TestCallSpacesConsecutiveCalls(t *testing.T) {
	server, _ := statusSequence(t)
	tr, clock, log := newTestTransport(time.Second)
	client := NewHTTPClient(server.URL, 5*time.Second, log)

	for i := 0; i < 4; i++ {
		_, err := tr.Call(context.Background(), "steam", get(client))
		require.NoError(t, err)
	}
	_, err := tr.Call(context.Background(), "opendota", get(client))
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, clock.Sleeps())
	assert.Equal(t, 4, tr.Calls("steam"))
	assert.Equal(t, 1, tr.Calls("opendota"))
}

func TestCallWallClockSpacing(t *testing.T) {
	server, _ := statusSequence(t)
	const interval = 25 * time.Millisecond
	tr := New(ratelimit.NewSpacer(ratelimit.SystemClock{}, interval), time.Second, logger.NewNopLogger())
	client := NewHTTPClient(server.URL, 5*time.Second, logger.NewNopLogger())

	const calls = 5
	start := time.Now()
	for i := 0; i < calls; i++ {
		_, err := tr.Call(context.Background(), "steam", get(client))
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), (calls-1)*interval)
}

func TestCallStopsOnCancel(t *testing.T) {
	server, _ := statusSequence(t, 429, 429, 429)
	tr, _, log := newTestTransport(time.Second)
	client := NewHTTPClient(server.URL, 5*time.Second, log)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := tr.Call(ctx, "steam", func(ctx context.Context) (*resty.Response, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return client.R().Get("/")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestTransientType(t *testing.T) {
	assert.Equal(t, errs.ErrorTypeRateLimit, transientType(429))
	assert.Equal(t, errs.ErrorTypeServerError, transientType(503))
	assert.True(t, isTransient(errs.New(errs.ErrorTypeNetwork, "", "")))
	assert.False(t, isTransient(context.Canceled))
}
