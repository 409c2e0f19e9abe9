// Package client is the transport boundary to the shop admin REST backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): login,
//     register and logout, catalog listing and mutation under /admin,
//     dashboard summary and analytics series, and a liveness probe.
//  2. A concrete HTTP implementation (see HTTPClient) that joins paths onto
//     a base endpoint, attaches the bearer token obtained from a TokenSource,
//     paces outbound calls, tags each call with an X-Request-ID, and maps HTTP
//     outcomes to the error values below.
//
// # Error Handling
//
// Outcomes are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable (no response), ErrUnauthorized (401/403), ErrNotFound (404)
// and ErrValidation (field errors; the concrete *ValidationError keeps the
// field order of the response). Any other non-2xx status is a *StatusError.
//
// A 401/403 on a bearer-authenticated call also invokes TokenSource.Expire
// with the token that was sent, which lets the session owner drop it if it
// is still the current one.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation and timeouts. There is no retry.
package client
