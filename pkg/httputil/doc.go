// Package httputil provides the HTTP plumbing shared by the asset client and
// the remote layout store.
//
// # Overview
//
//   - [Client]: JSON requests with default headers, status mapping and HTTP
//     hooks
//   - [Retry] and [Backoff]: automatic retry with exponential backoff
//
// # Status Mapping
//
// [CheckStatus] turns response codes into sentinel errors: 404 becomes
// [ErrNotFound], 401 and 403 become [ErrUnauthorized], 5xx becomes a
// retryable [ErrNetwork], any other non-2xx is a plain [ErrNetwork]. Transport failures are retryable too.
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures:
//
//	err := httputil.DefaultBackoff.Do(ctx, func() error {
//	    return client.GetJSON(ctx, url, &doc)
//	})
//
// Only errors wrapped in [RetryableError] trigger another attempt. Callers
// that must not retry, like the asset lookup, just call the client directly.
package httputil
