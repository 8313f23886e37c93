// Package docservice is the HTTP client for the downstream document service.
//
// The gateway forwards signup, login and document operations to the
// document service. Requests carry the caller's user id in the x-user-id
// header; non-2xx responses are returned as *DownstreamError.
package docservice
