// Package testutil contains helper fixtures used across tests to reduce
// boilerplate when simulating GitLab artifact endpoints and asserting on the
// requests a test issued. The helpers are intentionally minimal, build on
// net/http/httptest only, and are not intended for production usage.
package testutil
