// Package apiclient is the credential transport used by every call the console
// makes against the court-scheduling backend.
//
// A Client resolves the backend base URL once, keeps the session cookies in a
// cookie jar and mirrors the `csrftoken` cookie into the `X-CSRFToken` header on
// every request. The cookie and header names are a fixed wire contract with the
// backend and are not configurable.
//
// Failures are reported through three error types:
//   - *TransportError: the backend could not be reached, timed out, or answered
//     with a non-2xx status and no parseable body.
//   - *NotFoundError: the backend answered 404.
//   - *StatusError: any other non-2xx status carrying a JSON payload.
package apiclient
