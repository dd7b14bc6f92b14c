// Package stubapi is an in-memory stand-in for the court-scheduling backend.
//
// It speaks the same wire contract as the real service so the console can be
// exercised end to end without it:
//   - GET /auth/check/: {"isAuthenticated": bool, "user"?: {...}}. Always
//     issues the `csrftoken` cookie when the client has none.
//   - POST /auth/login/ {"username","password"} and POST /auth/register/
//     {"username","email","password",...}: {"user": {...}} plus a `sessionid`
//     cookie, or 400 with {"error": "..."}. Login rotates `csrftoken`.
//   - POST /auth/logout/: ends the session.
//   - /cases/, /judges/, /lawyers/, /schedules/ and their /{id}/ item paths:
//     list, create, retrieve, update (PUT) and delete with integer ids.
//     Missing items answer 404 {"detail": "Not found."}; invalid payloads
//     answer 400 with per-field message lists.
//   - GET /regenerate/: books every unscheduled open case into the first
//     free slot that avoids judge, lawyer and courtroom conflicts.
//   - GET /health/: liveness probe.
//
// Every route is served both at the root and under /api. Unsafe methods must
// echo the `csrftoken` cookie in the `X-CSRFToken` header or get 403.
package stubapi
