// Package middleware contains HTTP middleware for the Fiber status server.
//
// # Components
//
//   - Auth: optional API key validation (X-API-Key).
//   - RayID: assigns every request a unique id, stored in locals and echoed in the
//     response headers so log lines can be correlated.
package middleware
