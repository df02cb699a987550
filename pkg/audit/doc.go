// Package audit provides audit logging for security relevant operations.
//
// Events are written as RFC5424 syslog lines to stdout and, when an audit
// database is configured, persisted to its messages table.
//
// # Event Types
//
//   - AuthenticateEvent: bearer token and password authentication
//   - TokenEvent: API token issue and revoke
//   - PasswordEvent: password change and reset
//   - AccountEvent: registration, confirmation, email change, reset requests
//   - FetchEvent: FHIR resource reads
//   - RateLimitEvent: requests rejected by the rate limiter
//
// # Usage
//
//	audit.Log(audit.FetchEvent{
//	    User:         "alice",
//	    ClientIP:     "10.0.0.1",
//	    ResourceType: "ValueSet",
//	    ResourceID:   "administrative-gender",
//	    Success:      true,
//	})
//
// Set UNKANI_AUDIT_ENABLED=false to disable audit output.
package audit
