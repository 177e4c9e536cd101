/*
dto.go - Wire envelopes for API responses

PURPOSE:
  The record and request shapes themselves live in the habit and client
  packages (their JSON tags are the wire contract, shared with the
  remote backend). This file holds only the envelopes that exist purely
  on the HTTP surface.
*/
package api

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DeleteResponse acknowledges a successful delete.
type DeleteResponse struct {
	Success bool `json:"success"`
}
