// Package client talks to the codecredits backend over HTTP.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     authentication, credits, code generation, payments and the admin
//     endpoints.
//  2. A concrete JSON-over-HTTP implementation (see HTTPClient). The base
//     client is anonymous; WithToken returns an immutable view that attaches
//     "Authorization: Bearer <token>" to every request it issues. There is no
//     process-wide mutable header.
//  3. ParseTokenClaims for displaying the subject and expiry of a bearer
//     token. The token is not verified; the server remains the only authority.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable, 401 maps to ErrUnauthorized and 403
// to ErrForbidden. Any other non-2xx response is returned as *APIError with
// the backend's "detail" message decoded when present. All of these match
// with errors.Is / errors.As.
//
// # Concurrency & Contexts
//
// HTTPClient values are safe for concurrent use. Every request honors the
// caller's context and is tagged with a fresh X-Request-ID.
package client
