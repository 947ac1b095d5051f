// Package rest implements the low-level HTTP client that the endpoint
// bindings delegate to. It owns the cross-cutting concerns that would
// otherwise be duplicated per endpoint:
//
//   - URL construction against a normalized base URL (the /api/v4 prefix is
//     appended when missing)
//   - Credential injection (private token, OAuth token or CI job token)
//   - Retry with exponential backoff for idempotent requests
//   - Translation of non-2xx statuses into the typed error taxonomy
//   - Response materialization: buffered bytes, callback-driven chunk
//     streaming, or a lazy chunk iterator
//
// Endpoint bindings (see the artifacts package) stay thin leaves: they build a
// path, call Get or Delete, and hand the response to Materialize.
package rest
