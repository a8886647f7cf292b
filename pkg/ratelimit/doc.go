// Package ratelimit spaces out calls to remote services.
//
// Each service has its own last-call timestamp and minimum interval. Callers
// Wait before a call and Mark after it completes:
//
//	spacer := ratelimit.NewSpacer(ratelimit.SystemClock{}, time.Second)
//	spacer.SetInterval("opendota", 1100*time.Millisecond)
//
//	if err := spacer.Wait(ctx, "steam"); err != nil {
//	    return err
//	}
//	resp, err := doCall()
//	spacer.Mark("steam")
//
// The Clock is injectable; FakeClock lets tests observe every sleep without
// waiting for it.
package ratelimit
