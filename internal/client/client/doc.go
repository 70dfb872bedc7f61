// Package client contains the scanner's two outward-facing building blocks.
//
// # Overview
//
// The package provides:
//  1. A transport contract (see the Client interface) for the remote
//     authority: fetching the entry snapshot, uploading a check-in batch and
//     a liveness probe.
//  2. An HTTP/JSON implementation (see HTTPClient) that attaches the bearer
//     token of the current session and maps failures to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations, NewRepositories)
//     wiring an SQLite database and applying the embedded goose migrations.
//
// # Error Handling
//
// Callers match conditions with errors.Is: ErrUnavailable (network failure),
// ErrUnauthorized (401/403), ErrServer (any other non-2xx) and
// ErrMalformedResponse (undecodable body). Non-2xx responses are returned as
// *APIError carrying the status and the server's detail text.
//
// All operations accept context.Context and honor cancellation and timeouts.
package client
