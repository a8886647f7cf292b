// Package transport wraps every remote call made by matchharvest.
//
// Calls to the same service are spaced by a ratelimit.Spacer, measured from
// the end of one call to the start of the next. Connection failures and HTTP
// 429/503 responses are waited out with a fixed cooldown and retried without
// limit. Any other response, successful or not, is handed back to the caller,
// which applies its own bounded retry.
package transport
