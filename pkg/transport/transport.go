package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/ratelimit"
	"matchharvest/pkg/retry"
)

// DefaultCooldown is the wait after a connection failure or a 429/503
const DefaultCooldown = 30 * time.Second

// Request issues one HTTP call
type Request func(ctx context.Context) (*resty.Response, error)

// Transport spaces calls per service and waits out transient failures.
// Connection failures and 429/503 responses are retried after a cooldown
// without limit; every other response is returned to the caller.
type Transport struct {
	spacer   *ratelimit.Spacer
	clock    ratelimit.Clock
	cooldown time.Duration
	logger   logger.Logger
	calls    map[string]int
	mu       sync.Mutex
}

// New creates a transport. A zero cooldown uses DefaultCooldown.
func New(spacer *ratelimit.Spacer, cooldown time.Duration, log logger.Logger) *Transport {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Transport{
		spacer:   spacer,
		clock:    spacer.Clock(),
		cooldown: cooldown,
		logger:   log.WithField("component", "transport"),
		calls:    make(map[string]int),
	}
}

// Call issues req against service
func (t *Transport) Call(ctx context.Context, service string, req Request) (*resty.Response, error) {
	var resp *resty.Response

	err := retry.Do(func() error {
		if err := t.spacer.Wait(ctx, service); err != nil {
			return err
		}

		start := t.clock.Now()
		r, err := req(ctx)
		t.spacer.Mark(service)
		t.count(service)

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return errs.Wrap(errs.ErrorTypeNetwork, "", err, fmt.Sprintf("%s unreachable", service))
		}

		logger.LogRemoteCall(t.logger, service, r.StatusCode(), t.clock.Now().Sub(start))

		if errs.IsTransientStatusCode(r.StatusCode()) {
			return &errs.Error{
				Type:    transientType(r.StatusCode()),
				Message: fmt.Sprintf("%s responded %s", service, r.Status()),
				Code:    r.StatusCode(),
			}
		}

		resp = r
		return nil
	}, &retry.Config{
		MaxAttempts: retry.Forever,
		Backoff:     retry.Cooldown(t.cooldown),
		RetryIf:     isTransient,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.LogCooldown(t.logger, service, err.Error(), delay)
		},
		Sleep:   t.clock.Sleep,
		Context: ctx,
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Calls returns how many calls were issued to service, retries included
func (t *Transport) Calls(service string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[service]
}

// Cooldown returns the wait between attempts
func (t *Transport) Cooldown() time.Duration {
	return t.cooldown
}

// Sleep waits on the transport's clock
func (t *Transport) Sleep(ctx context.Context, d time.Duration) error {
	return t.clock.Sleep(ctx, d)
}

func (t *Transport) count(service string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls[service]++
}

func transientType(code int) errs.ErrorType {
	if code == 429 {
		return errs.ErrorTypeRateLimit
	}
	return errs.ErrorTypeServerError
}

func isTransient(err error) bool {
	switch errs.TypeOf(err) {
	case errs.ErrorTypeNetwork, errs.ErrorTypeRateLimit, errs.ErrorTypeServerError:
		return true
	default:
		return false
	}
}
