// Package middleware provides the HTTP middleware wrapped around unkani routes.
//
//   - TokenAuthenticator: bearer API tokens, sets the request identity
//   - BasicAuthenticator: username or email with password, used to issue tokens
//   - RateLimiter: fixed-window limits per user or client IP
//   - ETag: body-hash validators with If-None-Match and If-Match handling
//   - Metrics and RequestLogger: Prometheus metrics and request scoped zerolog loggers
//
// Errors are written as {"error": message} JSON bodies.
package middleware
