// Package retry provides bounded retry with a fixed cooldown between attempts.
//
// Single-shot lookups against the Steam API retry up to five times and
// paginated fetches up to twenty. When the budget runs out the returned error
// has type attempts_exceeded and wraps both errors.ErrAttemptsExceeded and the
// last failure:
//
//	details, err := retry.DoWithResult(func() (*steam.MatchDetails, error) {
//		return fetch(ctx, id)
//	}, retry.Bounded(ctx, 5, 30*time.Second, errors.StageLookup, log))
//
// MaxAttempts may be set to Forever, which never gives up. That is reserved
// for connection failures and throttling responses in the transport.
package retry
